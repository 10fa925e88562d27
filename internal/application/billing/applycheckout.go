package billing

import (
	"context"
	"errors"
	"fmt"

	domainbilling "github.com/zevix-io/zevix/internal/domain/billing"
	"github.com/zevix-io/zevix/internal/domain/usage"
	domainuser "github.com/zevix-io/zevix/internal/domain/user"
	"github.com/zevix-io/zevix/internal/shared/biztime"
	apperrors "github.com/zevix-io/zevix/internal/shared/errors"
	"github.com/zevix-io/zevix/internal/shared/logger"
)

// ApplyCheckoutUseCase turns a completed checkout session into a plan
// on the user record. A plan change resets the current month's ledger
// first so consumption under the old tier never counts against the new
// one; re-applying the same plan only refreshes the expiry, which makes
// webhook retries harmless.
type ApplyCheckoutUseCase struct {
	userRepo     domainuser.Repository
	usageRepo    usage.Repository
	catalog      *domainbilling.Catalog
	cache        *PlanCache
	gateway      Gateway
	validityDays int
	logger       logger.Interface
}

// NewApplyCheckoutUseCase creates a new apply checkout use case
func NewApplyCheckoutUseCase(
	userRepo domainuser.Repository,
	usageRepo usage.Repository,
	catalog *domainbilling.Catalog,
	cache *PlanCache,
	gateway Gateway,
	validityDays int,
	logger logger.Interface,
) *ApplyCheckoutUseCase {
	if validityDays <= 0 {
		validityDays = 30
	}
	return &ApplyCheckoutUseCase{
		userRepo:     userRepo,
		usageRepo:    usageRepo,
		catalog:      catalog,
		cache:        cache,
		gateway:      gateway,
		validityDays: validityDays,
		logger:       logger,
	}
}

// ApplyResult reports what a checkout application did.
type ApplyResult struct {
	Email   string
	Plan    domainbilling.Plan
	Changed bool
}

// Execute applies a checkout session to the matching user account.
func (uc *ApplyCheckoutUseCase) Execute(ctx context.Context, session *CheckoutSession) (*ApplyResult, error) {
	if session == nil {
		return nil, apperrors.NewBadRequestError("invalid_input", "checkout session is empty")
	}

	email, source := extractEmail(ctx, session, uc.gateway)
	if email == "" {
		uc.logger.Warnw("checkout session carries no usable email", "session_id", session.ID)
		return nil, apperrors.NewBadRequestError("missing_email", "checkout session carries no usable email")
	}
	uc.logger.Infow("applying checkout session",
		"session_id", session.ID, "email", email, "email_source", source)

	plan := uc.resolvePlan(session)

	u, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("user_not_found", "no account matches the checkout email")
		}
		return nil, fmt.Errorf("failed to load user for checkout: %w", err)
	}

	if plan == domainbilling.PlanNone {
		// Nothing mapped: keep whatever the account already has.
		uc.logger.Warnw("checkout session resolves to no plan, keeping stored plan",
			"session_id", session.ID, "email", email, "stored", u.Plan())
		return &ApplyResult{Email: email, Plan: u.Plan(), Changed: false}, nil
	}

	changed, err := uc.applyPlan(ctx, u, plan)
	if err != nil {
		return nil, err
	}
	return &ApplyResult{Email: email, Plan: plan, Changed: changed}, nil
}

// ApplyCancellation downgrades the user to no plan. This runs only on
// an affirmative cancellation event, never on mere absence of
// subscription data.
func (uc *ApplyCheckoutUseCase) ApplyCancellation(ctx context.Context, email string) error {
	u, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return apperrors.NewNotFoundError("user_not_found", "no account matches the cancellation email")
		}
		return fmt.Errorf("failed to load user for cancellation: %w", err)
	}

	if _, err := uc.applyPlan(ctx, u, domainbilling.PlanNone); err != nil {
		return err
	}
	uc.logger.Infow("subscription cancelled, plan downgraded", "email", u.Email())
	return nil
}

// resolvePlan derives the plan from line items first, then from an
// explicit metadata hint.
func (uc *ApplyCheckoutUseCase) resolvePlan(session *CheckoutSession) domainbilling.Plan {
	items := make([]domainbilling.SubscriptionItem, 0, len(session.LineItems))
	for _, li := range session.LineItems {
		items = append(items, domainbilling.SubscriptionItem{PriceID: li.PriceID, ProductID: li.ProductID})
	}
	if plan := uc.catalog.PlanForItems(items); plan != domainbilling.PlanNone {
		return plan
	}
	return domainbilling.NormalizePlan(session.Metadata["plan"])
}

func (uc *ApplyCheckoutUseCase) applyPlan(ctx context.Context, u *domainuser.User, plan domainbilling.Plan) (bool, error) {
	email := u.Email()
	validUntil := int64(0)
	if plan != domainbilling.PlanNone {
		validUntil = biztime.ToMillis(biztime.NowUTC().AddDate(0, 0, uc.validityDays))
	}

	if plan == u.Plan() {
		if plan != domainbilling.PlanNone {
			if err := uc.userRepo.UpdatePlan(ctx, email, plan, validUntil); err != nil {
				return false, fmt.Errorf("failed to refresh plan expiry: %w", err)
			}
		}
		uc.cache.Put(email, plan)
		return false, nil
	}

	// Reset before the plan switch so a crash in between leaves the
	// user with a zeroed ledger under the old plan, not stale usage
	// under the new one.
	month := biztime.CurrentMonth()
	if err := uc.usageRepo.Reset(ctx, email, month); err != nil {
		return false, fmt.Errorf("failed to reset usage for plan change: %w", err)
	}

	if err := uc.userRepo.UpdatePlan(ctx, email, plan, validUntil); err != nil {
		return false, fmt.Errorf("failed to update plan: %w", err)
	}

	uc.cache.Put(email, plan)
	uc.logger.Infow("plan applied", "email", email, "from", u.Plan(), "to", plan)
	return true, nil
}
