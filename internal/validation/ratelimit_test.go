package validation_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brpay/payment-service/internal/validation"
	"github.com/brpay/payment-service/pkg/timeutil"
)

func TestRateLimiter_PerMinuteCeiling(t *testing.T) {
	clock := timeutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 30, 0, time.UTC))
	limiter := validation.NewRateLimiter(10, clock)

	for i := 0; i < 10; i++ {
		assert.True(t, limiter.Allow("cust-1"), "call %d should be allowed", i+1)
	}
	assert.False(t, limiter.Allow("cust-1"), "11th call should be denied")
	assert.False(t, limiter.Allow("cust-1"), "12th call should be denied")
}

func TestRateLimiter_ResetsOnNextMinute(t *testing.T) {
	clock := timeutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 59, 0, time.UTC))
	limiter := validation.NewRateLimiter(2, clock)

	assert.True(t, limiter.Allow("cust-1"))
	assert.True(t, limiter.Allow("cust-1"))
	assert.False(t, limiter.Allow("cust-1"))

	clock.Advance(time.Second)
	assert.True(t, limiter.Allow("cust-1"), "new minute starts a fresh bucket")
}

func TestRateLimiter_CustomersAreIndependent(t *testing.T) {
	clock := timeutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	limiter := validation.NewRateLimiter(1, clock)

	assert.True(t, limiter.Allow("cust-1"))
	assert.False(t, limiter.Allow("cust-1"))
	assert.True(t, limiter.Allow("cust-2"))
}

func TestRateLimiter_BlankCustomerDenied(t *testing.T) {
	clock := timeutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	limiter := validation.NewRateLimiter(10, clock)

	assert.False(t, limiter.Allow(""))
	assert.False(t, limiter.Allow("   "))
}

func TestRateLimiter_ConcurrentExactCount(t *testing.T) {
	clock := timeutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	limiter := validation.NewRateLimiter(50, clock)

	var allowed int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("cust-1") {
				atomic.AddInt64(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), allowed, "exactly the ceiling must be admitted")
}
