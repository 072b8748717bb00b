package validation

import (
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/brpay/payment-service/pkg/timeutil"
)

const rateLimiterShards = 32

// RateLimiter counts accepted calls per (customer, UTC minute) bucket
// and rejects the ones above the ceiling. Counters are sharded by
// customer id so concurrent requests for different customers do not
// contend, while increments for the same customer are serialized per
// shard and never undercount. Stale buckets are pruned opportunistically
// whenever a shard rolls into a new minute.
type RateLimiter struct {
	shards [rateLimiterShards]rateLimiterShard
	limit  int
	clock  timeutil.Clock
}

type rateLimiterShard struct {
	mu       sync.Mutex
	counts   map[string]int
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing limit accepted calls per
// customer per UTC minute. The clock is injectable for tests.
func NewRateLimiter(limit int, clock timeutil.Clock) *RateLimiter {
	rl := &RateLimiter{limit: limit, clock: clock}
	for i := range rl.shards {
		rl.shards[i].counts = make(map[string]int)
	}
	return rl
}

// Allow records one call for the customer and reports whether it is
// within the per-minute ceiling. Blank customer ids are always denied.
func (rl *RateLimiter) Allow(customerID string) bool {
	if strings.TrimSpace(customerID) == "" {
		return false
	}

	now := rl.clock.Now().UTC()
	minute := now.Truncate(time.Minute)
	key := fmt.Sprintf("%s:%s", customerID, minute.Format("2006-01-02-15-04"))

	shard := &rl.shards[rl.shardFor(customerID)]
	shard.mu.Lock()
	defer shard.mu.Unlock()

	// Drop buckets older than the previous minute when the shard sees
	// a new minute, keeping the map bounded.
	if !minute.Equal(shard.lastSeen) {
		prev := minute.Add(-time.Minute).Format("2006-01-02-15-04")
		cur := minute.Format("2006-01-02-15-04")
		for k := range shard.counts {
			if !strings.HasSuffix(k, cur) && !strings.HasSuffix(k, prev) {
				delete(shard.counts, k)
			}
		}
		shard.lastSeen = minute
	}

	shard.counts[key]++
	return shard.counts[key] <= rl.limit
}

func (rl *RateLimiter) shardFor(customerID string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(customerID))
	return h.Sum32() % rateLimiterShards
}
