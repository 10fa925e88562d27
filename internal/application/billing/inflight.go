package billing

import "sync"

// inflightGuard tracks emails with a reconciliation in progress.
// Unlike singleflight, a second caller does not wait for the first's
// result; it bails out immediately so the request keeps its local plan.
type inflightGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{active: make(map[string]struct{})}
}

// tryAcquire marks the email as in flight. Returns false when another
// reconciliation already holds it.
func (g *inflightGuard) tryAcquire(email string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[email]; busy {
		return false
	}
	g.active[email] = struct{}{}
	return true
}

func (g *inflightGuard) release(email string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, email)
}
