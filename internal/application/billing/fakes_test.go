package billing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	domainbilling "github.com/zevix-io/zevix/internal/domain/billing"
	"github.com/zevix-io/zevix/internal/domain/usage"
	domainuser "github.com/zevix-io/zevix/internal/domain/user"
	"github.com/zevix-io/zevix/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeGateway struct {
	mu        sync.Mutex
	subs      map[string][]domainbilling.Subscription
	sessions  map[string]*CheckoutSession
	emails    map[string]string
	subCalls  int
	listErr   error
	sessErr   error
	emailErr  error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		subs:     make(map[string][]domainbilling.Subscription),
		sessions: make(map[string]*CheckoutSession),
		emails:   make(map[string]string),
	}
}

func (g *fakeGateway) SubscriptionsByEmail(_ context.Context, email string) ([]domainbilling.Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.subCalls++
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.subs[email], nil
}

func (g *fakeGateway) CheckoutSession(_ context.Context, sessionID string) (*CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sessErr != nil {
		return nil, g.sessErr
	}
	return g.sessions[sessionID], nil
}

func (g *fakeGateway) CustomerEmail(_ context.Context, customerID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.emailErr != nil {
		return "", g.emailErr
	}
	return g.emails[customerID], nil
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.subCalls
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domainuser.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domainuser.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *domainuser.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[u.Email()]; exists {
		return domainuser.ErrEmailTaken
	}
	_ = u.SetID(uint(len(r.users) + 1))
	r.users[u.Email()] = u
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domainuser.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, fmt.Errorf("get user %s: %w", email, domainuser.ErrNotFound)
	}
	return u, nil
}

func (r *fakeUserRepo) UpdatePlan(_ context.Context, email string, plan domainbilling.Plan, validUntil int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return fmt.Errorf("update plan for %s: %w", email, domainuser.ErrNotFound)
	}
	u.ChangePlan(plan, validUntil)
	return nil
}

type fakeUsageRepo struct {
	mu      sync.Mutex
	ledgers map[string]*usage.Ledger
	resets  []string
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{ledgers: make(map[string]*usage.Ledger)}
}

func usageKey(email, month string) string {
	return email + "|" + month
}

func (r *fakeUsageRepo) Get(_ context.Context, email, month string) (*usage.Ledger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ledgers[usageKey(email, month)], nil
}

func (r *fakeUsageRepo) GetForUpdate(ctx context.Context, email, month string) (*usage.Ledger, error) {
	return r.Get(ctx, email, month)
}

func (r *fakeUsageRepo) CreateIfAbsent(_ context.Context, email, month string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := usageKey(email, month)
	if _, ok := r.ledgers[key]; ok {
		return nil
	}
	l, err := usage.NewLedger(email, month)
	if err != nil {
		return err
	}
	r.ledgers[key] = l
	return nil
}

func (r *fakeUsageRepo) Save(_ context.Context, ledger *usage.Ledger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ledgers[usageKey(ledger.UserEmail(), ledger.Month())] = ledger
	return nil
}

func (r *fakeUsageRepo) Reset(_ context.Context, email, month string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets = append(r.resets, usageKey(email, month))
	if l, ok := r.ledgers[usageKey(email, month)]; ok {
		l.Reset()
	}
	return nil
}
