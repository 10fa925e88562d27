package billing

import (
	"context"
	"time"

	domainbilling "github.com/zevix-io/zevix/internal/domain/billing"
	domainuser "github.com/zevix-io/zevix/internal/domain/user"
	"github.com/zevix-io/zevix/internal/shared/biztime"
	"github.com/zevix-io/zevix/internal/shared/logger"
)

// ReconcilePlanUseCase lines the locally stored plan up with what the
// external billing system says, at most once per cache TTL per email.
// Reconciliation is strictly best-effort: any failure falls back to the
// local plan so billing outages never lock users out.
type ReconcilePlanUseCase struct {
	gateway      Gateway
	userRepo     domainuser.Repository
	catalog      *domainbilling.Catalog
	cache        *PlanCache
	inflight     *inflightGuard
	timeout      time.Duration
	validityDays int
	logger       logger.Interface
}

// NewReconcilePlanUseCase creates a new reconcile plan use case
func NewReconcilePlanUseCase(
	gateway Gateway,
	userRepo domainuser.Repository,
	catalog *domainbilling.Catalog,
	cache *PlanCache,
	timeout time.Duration,
	validityDays int,
	logger logger.Interface,
) *ReconcilePlanUseCase {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if validityDays <= 0 {
		validityDays = 30
	}
	return &ReconcilePlanUseCase{
		gateway:      gateway,
		userRepo:     userRepo,
		catalog:      catalog,
		cache:        cache,
		inflight:     newInflightGuard(),
		timeout:      timeout,
		validityDays: validityDays,
		logger:       logger,
	}
}

// Execute returns the authoritative plan for the email. A fresh cache
// entry short-circuits the external call, except that a cached none
// never overrides a non-none local plan. When another reconciliation
// for the same email is already running, the local plan is returned
// unchanged rather than waiting.
func (uc *ReconcilePlanUseCase) Execute(ctx context.Context, email string, localPlan domainbilling.Plan) domainbilling.Plan {
	if cached, ok := uc.cache.Get(email); ok {
		if cached != domainbilling.PlanNone || localPlan == domainbilling.PlanNone {
			return cached
		}
	}

	if !uc.inflight.tryAcquire(email) {
		return localPlan
	}
	defer uc.inflight.release(email)

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	subs, err := uc.gateway.SubscriptionsByEmail(ctx, email)
	if err != nil {
		uc.logger.Warnw("subscription lookup failed, keeping local plan",
			"email", email, "plan", localPlan, "error", err)
		return localPlan
	}

	best, found := domainbilling.BestSubscription(subs)
	if !found {
		// No live subscription is not proof of cancellation: checkout
		// and billing records can lag. Keep whatever we have.
		uc.cache.Put(email, localPlan)
		return localPlan
	}

	remote := uc.catalog.PlanForItems(best.Items)
	if remote == domainbilling.PlanNone {
		uc.logger.Warnw("live subscription has no mapped plan, keeping local plan",
			"email", email, "subscription_id", best.ID)
		uc.cache.Put(email, localPlan)
		return localPlan
	}

	if remote != localPlan {
		validUntil := biztime.ToMillis(biztime.NowUTC().AddDate(0, 0, uc.validityDays))
		if err := uc.userRepo.UpdatePlan(ctx, email, remote, validUntil); err != nil {
			uc.logger.Errorw("failed to persist reconciled plan",
				"email", email, "plan", remote, "error", err)
			return localPlan
		}
		uc.logger.Infow("plan reconciled", "email", email, "from", localPlan, "to", remote)
	}

	uc.cache.Put(email, remote)
	return remote
}
