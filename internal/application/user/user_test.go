package user

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbilling "github.com/zevix-io/zevix/internal/domain/billing"
	"github.com/zevix-io/zevix/internal/domain/usage"
	domainuser "github.com/zevix-io/zevix/internal/domain/user"
	apperrors "github.com/zevix-io/zevix/internal/shared/errors"
	"github.com/zevix-io/zevix/internal/shared/logger"
)

type memUserRepo struct {
	users map[string]*domainuser.User
}

func (r *memUserRepo) Create(_ context.Context, u *domainuser.User) error {
	if _, exists := r.users[u.Email()]; exists {
		return apperrors.NewConflictError("email_taken", "email is already registered")
	}
	_ = u.SetID(uint(len(r.users) + 1))
	r.users[u.Email()] = u
	return nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domainuser.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, fmt.Errorf("get user %s: %w", email, domainuser.ErrNotFound)
	}
	return u, nil
}

func (r *memUserRepo) UpdatePlan(_ context.Context, email string, plan domainbilling.Plan, validUntil int64) error {
	u, ok := r.users[email]
	if !ok {
		return domainuser.ErrNotFound
	}
	u.ChangePlan(plan, validUntil)
	return nil
}

type memUsageRepo struct {
	ledgers map[string]*usage.Ledger
}

func (r *memUsageRepo) key(email, month string) string { return email + "|" + month }

func (r *memUsageRepo) Get(_ context.Context, email, month string) (*usage.Ledger, error) {
	return r.ledgers[r.key(email, month)], nil
}

func (r *memUsageRepo) GetForUpdate(ctx context.Context, email, month string) (*usage.Ledger, error) {
	return r.Get(ctx, email, month)
}

func (r *memUsageRepo) CreateIfAbsent(_ context.Context, email, month string) error {
	key := r.key(email, month)
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

func (r *memUsageRepo) Save(_ context.Context, ledger *usage.Ledger) error {
	r.ledgers[r.key(ledger.UserEmail(), ledger.Month())] = ledger
	return nil
}

func (r *memUsageRepo) Reset(_ context.Context, email, month string) error {
	if l, ok := r.ledgers[r.key(email, month)]; ok {
		l.Reset()
	}
	return nil
}

// plainHasher keeps test fixtures readable; bcrypt is covered in the
// infrastructure auth tests.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Verify(password, hash string) error {
	if hash != "hashed:"+password {
		return fmt.Errorf("password verification failed")
	}
	return nil
}

type stubIssuer struct{}

func (stubIssuer) Issue(email string, plan domainbilling.Plan) (string, time.Time, error) {
	return "token-for-" + email, time.Now().Add(30 * 24 * time.Hour), nil
}

type fixedResolver struct {
	plan domainbilling.Plan
}

func (r fixedResolver) Execute(_ context.Context, _ string, _ domainbilling.Plan) domainbilling.Plan {
	return r.plan
}

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegister(t *testing.T) {
	repo := &memUserRepo{users: make(map[string]*domainuser.User)}
	uc := NewRegisterUseCase(repo, plainHasher{}, testLogger())
	ctx := context.Background()

	t.Run("creates account with no plan", func(t *testing.T) {
		result, err := uc.Execute(ctx, RegisterCommand{Email: " New@X.com ", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, "new@x.com", result.Email)
		assert.Equal(t, "none", result.Plan)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := uc.Execute(ctx, RegisterCommand{Email: "new@x.com", Password: "password123"})
		require.Error(t, err)
		assert.True(t, apperrors.HasReason(err, "email_taken"))
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := uc.Execute(ctx, RegisterCommand{Email: "not-an-email", Password: "password123"})
		assert.True(t, apperrors.HasReason(err, "invalid_input"))
	})

	t.Run("short password", func(t *testing.T) {
		_, err := uc.Execute(ctx, RegisterCommand{Email: "short@x.com", Password: "short"})
		assert.True(t, apperrors.HasReason(err, "invalid_input"))
	})
}

func TestLogin(t *testing.T) {
	newFixture := func(t *testing.T, resolver PlanResolver) (*LoginUseCase, *memUserRepo, *memUsageRepo) {
		t.Helper()
		users := &memUserRepo{users: make(map[string]*domainuser.User)}
		ledgers := &memUsageRepo{ledgers: make(map[string]*usage.Ledger)}
		catalog := domainbilling.NewCatalog(nil, nil, nil)
		uc := NewLoginUseCase(users, ledgers, catalog, resolver, plainHasher{}, stubIssuer{}, testLogger())

		u, err := domainuser.NewUser("a@x.com", "hashed:password123")
		require.NoError(t, err)
		require.NoError(t, users.Create(context.Background(), u))
		return uc, users, ledgers
	}

	t.Run("success returns session snapshot", func(t *testing.T) {
		uc, _, ledgers := newFixture(t, nil)

		result, err := uc.Execute(context.Background(), LoginCommand{Email: "a@x.com", Password: "password123"})
		require.NoError(t, err)

		assert.Equal(t, "none", result.Plan)
		assert.Equal(t, "token-for-a@x.com", result.Token)
		assert.NotEmpty(t, result.Month)
		assert.Equal(t, 0, result.Used)
		assert.NotNil(t, result.UsedIDs)
		assert.Greater(t, result.AuthUntil, int64(0))

		ledger, err := ledgers.Get(context.Background(), "a@x.com", result.Month)
		require.NoError(t, err)
		assert.NotNil(t, ledger, "login must prime the month's ledger")
	})

	t.Run("wrong password", func(t *testing.T) {
		uc, _, _ := newFixture(t, nil)
		_, err := uc.Execute(context.Background(), LoginCommand{Email: "a@x.com", Password: "wrong"})
		require.Error(t, err)
		assert.True(t, apperrors.HasReason(err, "invalid_credentials"))
	})

	t.Run("unknown account yields the same reason", func(t *testing.T) {
		uc, _, _ := newFixture(t, nil)
		_, err := uc.Execute(context.Background(), LoginCommand{Email: "ghost@x.com", Password: "password123"})
		require.Error(t, err)
		assert.True(t, apperrors.HasReason(err, "invalid_credentials"))
	})

	t.Run("resolver plan wins over stored plan", func(t *testing.T) {
		uc, _, _ := newFixture(t, fixedResolver{plan: domainbilling.PlanBusiness})

		result, err := uc.Execute(context.Background(), LoginCommand{Email: "a@x.com", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, "business", result.Plan)
		assert.Equal(t, 1000, result.Limit)
	})

	t.Run("existing usage is reported", func(t *testing.T) {
		uc, _, ledgers := newFixture(t, nil)
		ctx := context.Background()

		first, err := uc.Execute(ctx, LoginCommand{Email: "a@x.com", Password: "password123"})
		require.NoError(t, err)

		ledger, err := ledgers.Get(ctx, "a@x.com", first.Month)
		require.NoError(t, err)
		ledger.Consume([]string{"l1", "l2"}, 500)

		second, err := uc.Execute(ctx, LoginCommand{Email: "a@x.com", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, 2, second.Used)
		assert.Equal(t, []string{"l1", "l2"}, second.UsedIDs)
	})
}
