package billing

import (
	"sync"
	"time"

	domainbilling "github.com/zevix-io/zevix/internal/domain/billing"
)

type planEntry struct {
	plan     domainbilling.Plan
	cachedAt time.Time
}

// PlanCache is a process-local TTL cache of reconciled plans, keyed by
// email. It exists to keep the hot consume path from hitting the
// external billing system on every request. Expired entries are
// evicted lazily on read.
type PlanCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]planEntry
}

// NewPlanCache creates a cache with the given TTL.
func NewPlanCache(ttl time.Duration) *PlanCache {
	return &PlanCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]planEntry),
	}
}

// NewPlanCacheWithClock creates a cache with an injected clock.
func NewPlanCacheWithClock(ttl time.Duration, now func() time.Time) *PlanCache {
	c := NewPlanCache(ttl)
	c.now = now
	return c
}

// Get returns the cached plan for the email if present and fresh.
func (c *PlanCache) Get(email string) (domainbilling.Plan, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[email]
	if !ok {
		return domainbilling.PlanNone, false
	}
	if c.now().Sub(entry.cachedAt) >= c.ttl {
		delete(c.entries, email)
		return domainbilling.PlanNone, false
	}
	return entry.plan, true
}

// Put stores the plan for the email with a fresh timestamp.
func (c *PlanCache) Put(email string, plan domainbilling.Plan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[email] = planEntry{plan: plan, cachedAt: c.now()}
}

// Invalidate drops the entry for the email, if any.
func (c *PlanCache) Invalidate(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, email)
}
