package timeutil_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brpay/payment-service/pkg/timeutil"
)

func TestNowIsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, timeutil.Now().Location())
	assert.Equal(t, time.UTC, timeutil.SystemClock{}.Now().Location())
}

func TestFakeClock(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := timeutil.NewFakeClock(base)

	assert.Equal(t, base, clock.Now())
	clock.Advance(90 * time.Second)
	assert.Equal(t, base.Add(90*time.Second), clock.Now())
}

func TestDayBounds(t *testing.T) {
	ts := time.Date(2026, 3, 1, 15, 30, 45, 123, time.UTC)

	start := timeutil.StartOfDay(ts)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), start)

	end := timeutil.EndOfDay(ts)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
}
