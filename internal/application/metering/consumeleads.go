package metering

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
	"github.com/zevix-io/zevix/internal/shared/utils"
)

// PlanResolver returns the authoritative plan for the email, falling
// back to the local plan on any failure.
type PlanResolver interface {
	Execute(ctx context.Context, email string, localPlan domainbilling.Plan) domainbilling.Plan
}

// TransactionManager scopes a function to one database transaction.
type TransactionManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ConsumeLeadsCommand is one lead consumption request.
type ConsumeLeadsCommand struct {
	Email   string
	LeadIDs []string
}

// ConsumeLeadsResult reports the month's ledger state after the call.
type ConsumeLeadsResult struct {
	Month            string   `json:"month"`
	Used             int      `json:"used"`
	NewlyUsed        int      `json:"newly_used"`
	AcceptedIDs      []string `json:"accepted_ids"`
	DuplicateIDs     []string `json:"duplicate_ids"`
	RejectedForQuota []string `json:"rejected_for_quota"`
	Limit            int      `json:"limit"`
	Remaining        int      `json:"remaining"`
}

// ConsumeLeadsUseCase meters lead consumption against the monthly plan
// quota. Submitting the same lead id twice is a successful no-op, so
// clients can safely retry; new ids are accepted in input order up to
// the quota.
type ConsumeLeadsUseCase struct {
	userRepo  domainuser.Repository
	usageRepo usage.Repository
	catalog   *domainbilling.Catalog
	resolver  PlanResolver
	txManager TransactionManager
	logger    logger.Interface
}

// NewConsumeLeadsUseCase creates a new consume leads use case. The
// resolver is optional; without it the stored plan is trusted as-is.
func NewConsumeLeadsUseCase(
	userRepo domainuser.Repository,
	usageRepo usage.Repository,
	catalog *domainbilling.Catalog,
	resolver PlanResolver,
	txManager TransactionManager,
	logger logger.Interface,
) *ConsumeLeadsUseCase {
	return &ConsumeLeadsUseCase{
		userRepo:  userRepo,
		usageRepo: usageRepo,
		catalog:   catalog,
		resolver:  resolver,
		txManager: txManager,
		logger:    logger,
	}
}

// Execute runs one consumption request.
func (uc *ConsumeLeadsUseCase) Execute(ctx context.Context, cmd ConsumeLeadsCommand) (*ConsumeLeadsResult, error) {
	email := utils.NormalizeEmail(cmd.Email)
	if email == "" {
		return nil, apperrors.NewValidationError("invalid_input", "email is required")
	}

	ids := usage.NormalizeLeadIDs(cmd.LeadIDs)
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("invalid_input", "lead_ids is required")
	}

	u, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("user_not_found", "no account matches this email")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	plan := u.Plan()
	if uc.resolver != nil {
		plan = uc.resolver.Execute(ctx, email, plan)
	}

	quota := uc.catalog.QuotaFor(plan)
	if quota <= 0 {
		// No row is created here: an account without a plan leaves no
		// trace in the ledger.
		return nil, apperrors.NewForbiddenError("no_plan", "an active subscription is required to consume leads")
	}

	month := biztime.CurrentMonth()
	var outcome usage.ConsumeOutcome
	var used int

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.usageRepo.CreateIfAbsent(txCtx, email, month); err != nil {
			return err
		}

		ledger, err := uc.usageRepo.GetForUpdate(txCtx, email, month)
		if err != nil {
			return err
		}
		if ledger == nil {
			return fmt.Errorf("usage ledger missing after upsert for %s %s", email, month)
		}

		outcome = ledger.Consume(ids, quota)
		used = ledger.Used()

		if outcome.NewlyUsed() == 0 {
			return nil
		}
		return uc.usageRepo.Save(txCtx, ledger)
	})
	if err != nil {
		uc.logger.Errorw("lead consumption failed", "email", email, "month", month, "error", err)
		return nil, fmt.Errorf("failed to consume leads: %w", err)
	}

	if outcome.NewlyUsed() == 0 && len(outcome.RejectedForQuota) > 0 {
		return nil, apperrors.NewForbiddenError("monthly_limit_exceeded",
			fmt.Sprintf("monthly limit of %d leads reached", quota))
	}

	uc.logger.Infow("leads consumed",
		"email", email, "month", month, "newly_used", outcome.NewlyUsed(),
		"duplicates", len(outcome.Duplicates), "rejected", len(outcome.RejectedForQuota),
		"used", used, "limit", quota)

	return &ConsumeLeadsResult{
		Month:            month,
		Used:             used,
		NewlyUsed:        outcome.NewlyUsed(),
		AcceptedIDs:      emptyIfNil(outcome.Accepted),
		DuplicateIDs:     emptyIfNil(outcome.Duplicates),
		RejectedForQuota: emptyIfNil(outcome.RejectedForQuota),
		Limit:            quota,
		Remaining:        quota - used,
	}, nil
}

func emptyIfNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
