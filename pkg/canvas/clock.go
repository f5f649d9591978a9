package canvas

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Clock supplies the logical time stamped on each write.
// Successive calls must never return a smaller value than an earlier call.
type Clock interface {
	Now(ctx context.Context) (uint64, error)
}

// ledgerScript advances the stored clock to max(now, last) and returns it.
// Running it server-side keeps timestamps monotonic across every process sharing the instance.
var ledgerScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local last = tonumber(redis.call('GET', KEYS[1]) or '0')
if now < last then
	now = last
end
redis.call('SET', KEYS[1], now)
return now
`)

// LedgerClock is a Clock backed by a Redis key, shared by all writers of an instance.
// Time is wall-clock unix seconds, clamped so it never goes backwards.
type LedgerClock struct {
	rdb  redis.Scripter
	key  string
	wall func() time.Time
}

// NewLedgerClock creates a ledger clock stored at ClockKey(instanceName).
func NewLedgerClock(rdb redis.Scripter, instanceName string) *LedgerClock {
	return &LedgerClock{
		rdb:  rdb,
		key:  ClockKey(instanceName),
		wall: time.Now,
	}
}

// Now returns the current ledger time.
func (c *LedgerClock) Now(ctx context.Context) (uint64, error) {
	now := c.wall().Unix()
	if now < 0 {
		now = 0
	}

	ts, err := ledgerScript.Run(ctx, c.rdb, []string{c.key}, now).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to advance ledger clock: %w", err)
	}
	return uint64(ts), nil
}

// MonotonicClock is an in-process Clock for single-writer deployments and tests.
// Each call returns max(source(), previous).
type MonotonicClock struct {
	mu     sync.Mutex
	last   uint64
	source func() uint64
}

// NewMonotonicClock wraps source so that it never goes backwards.
// A nil source uses wall-clock unix seconds.
func NewMonotonicClock(source func() uint64) *MonotonicClock {
	if source == nil {
		source = func() uint64 { return uint64(time.Now().Unix()) }
	}
	return &MonotonicClock{source: source}
}

// Now returns the next timestamp.
func (c *MonotonicClock) Now(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ts := c.source(); ts > c.last {
		c.last = ts
	}
	return c.last, nil
}
