package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	domainbilling "github.com/zevix-io/zevix/internal/domain/billing"
)

func TestPlanCache_TTL(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	cache := NewPlanCacheWithClock(5*time.Minute, clock)

	cache.Put("a@x.com", domainbilling.PlanBasic)

	plan, ok := cache.Get("a@x.com")
	assert.True(t, ok)
	assert.Equal(t, domainbilling.PlanBasic, plan)

	now = now.Add(4 * time.Minute)
	_, ok = cache.Get("a@x.com")
	assert.True(t, ok, "entry should survive inside the TTL")

	now = now.Add(2 * time.Minute)
	_, ok = cache.Get("a@x.com")
	assert.False(t, ok, "entry should expire past the TTL")
}

func TestPlanCache_MissOnUnknownEmail(t *testing.T) {
	cache := NewPlanCache(5 * time.Minute)
	_, ok := cache.Get("nobody@x.com")
	assert.False(t, ok)
}

func TestPlanCache_Invalidate(t *testing.T) {
	cache := NewPlanCache(5 * time.Minute)
	cache.Put("a@x.com", domainbilling.PlanBusiness)

	cache.Invalidate("a@x.com")

	_, ok := cache.Get("a@x.com")
	assert.False(t, ok)
}

func TestInflightGuard(t *testing.T) {
	g := newInflightGuard()

	assert.True(t, g.tryAcquire("a@x.com"))
	assert.False(t, g.tryAcquire("a@x.com"), "second acquire must fail while held")
	assert.True(t, g.tryAcquire("b@x.com"), "other emails are independent")

	g.release("a@x.com")
	assert.True(t, g.tryAcquire("a@x.com"))
}
