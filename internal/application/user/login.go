package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainbilling "github.com/zevix-io/zevix/internal/domain/billing"
	"github.com/zevix-io/zevix/internal/domain/usage"
	domainuser "github.com/zevix-io/zevix/internal/domain/user"
	"github.com/zevix-io/zevix/internal/shared/biztime"
	apperrors "github.com/zevix-io/zevix/internal/shared/errors"
	"github.com/zevix-io/zevix/internal/shared/logger"
	"github.com/zevix-io/zevix/internal/shared/utils"
)

// TokenIssuer signs bearer tokens binding an email and a plan snapshot.
type TokenIssuer interface {
	Issue(email string, plan domainbilling.Plan) (string, time.Time, error)
}

// PlanResolver returns the authoritative plan for the email, falling
// back to the local plan on any failure.
type PlanResolver interface {
	Execute(ctx context.Context, email string, localPlan domainbilling.Plan) domainbilling.Plan
}

// LoginCommand carries a login request.
type LoginCommand struct {
	Email    string
	Password string
}

// LoginResult is the session snapshot returned to the client: the
// reconciled plan, this month's usage, and a fresh bearer token.
type LoginResult struct {
	Email     string   `json:"email"`
	Plan      string   `json:"plan"`
	AuthUntil int64    `json:"auth_until"`
	Month     string   `json:"month"`
	Used      int      `json:"used"`
	UsedIDs   []string `json:"used_ids"`
	Limit     int      `json:"limit"`
	Token     string   `json:"token"`
}

// LoginUseCase authenticates a user, reconciles the plan best-effort,
// and primes the current month's ledger so the first consume call finds
// a row.
type LoginUseCase struct {
	userRepo  domainuser.Repository
	usageRepo usage.Repository
	catalog   *domainbilling.Catalog
	resolver  PlanResolver
	hasher    PasswordHasher
	tokens    TokenIssuer
	logger    logger.Interface
}

// NewLoginUseCase creates a new login use case. The resolver is
// optional; without it the stored plan is trusted as-is.
func NewLoginUseCase(
	userRepo domainuser.Repository,
	usageRepo usage.Repository,
	catalog *domainbilling.Catalog,
	resolver PlanResolver,
	hasher PasswordHasher,
	tokens TokenIssuer,
	logger logger.Interface,
) *LoginUseCase {
	return &LoginUseCase{
		userRepo:  userRepo,
		usageRepo: usageRepo,
		catalog:   catalog,
		resolver:  resolver,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger,
	}
}

// Execute authenticates and returns the session snapshot.
func (uc *LoginUseCase) Execute(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	email := utils.NormalizeEmail(cmd.Email)
	if email == "" || cmd.Password == "" {
		return nil, apperrors.NewValidationError("invalid_input", "email and password are required")
	}

	u, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			// Same reason as a bad password so probing for accounts
			// learns nothing.
			return nil, apperrors.NewUnauthorizedError("invalid_credentials", "email or password is incorrect")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := uc.hasher.Verify(cmd.Password, u.PasswordHash()); err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid_credentials", "email or password is incorrect")
	}

	plan := u.Plan()
	if uc.resolver != nil {
		plan = uc.resolver.Execute(ctx, email, plan)
	}

	month := biztime.CurrentMonth()
	used := 0
	usedIDs := []string{}
	if err := uc.usageRepo.CreateIfAbsent(ctx, email, month); err != nil {
		uc.logger.Warnw("failed to prime usage ledger on login", "email", email, "error", err)
	} else if ledger, err := uc.usageRepo.Get(ctx, email, month); err == nil && ledger != nil {
		used = ledger.Used()
		usedIDs = ledger.UsedIDs()
	}

	token, expiresAt, err := uc.tokens.Issue(email, plan)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	uc.logger.Infow("user logged in", "email", email, "plan", plan)
	return &LoginResult{
		Email:     email,
		Plan:      plan.String(),
		AuthUntil: biztime.ToMillis(expiresAt),
		Month:     month,
		Used:      used,
		UsedIDs:   usedIDs,
		Limit:     uc.catalog.QuotaFor(plan),
		Token:     token,
	}, nil
}
