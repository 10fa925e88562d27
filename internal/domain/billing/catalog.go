package billing

// Default monthly lead quotas per plan.
const (
	defaultBasicQuota      = 500
	defaultBusinessQuota   = 1000
	defaultEnterpriseQuota = 4500
)

// Catalog is the static plan catalog: monthly quotas per plan plus the
// mapping from external billing price/product identifiers to internal
// plan names. It is built once from configuration and is safe for
// concurrent reads.
type Catalog struct {
	quotas       map[Plan]int
	pricePlans   map[string]Plan
	productPlans map[string]Plan
}

// NewCatalog builds a catalog from configuration maps. Quota overrides
// and identifier mappings are keyed by raw strings as they appear in
// config; plan values are normalized on the way in. Nil maps are fine.
func NewCatalog(quotaOverrides map[string]int, pricePlans, productPlans map[string]string) *Catalog {
	c := &Catalog{
		quotas: map[Plan]int{
			PlanNone:       0,
			PlanBasic:      defaultBasicQuota,
			PlanBusiness:   defaultBusinessQuota,
			PlanEnterprise: defaultEnterpriseQuota,
		},
		pricePlans:   make(map[string]Plan, len(pricePlans)),
		productPlans: make(map[string]Plan, len(productPlans)),
	}

	for raw, quota := range quotaOverrides {
		plan := NormalizePlan(raw)
		if plan == PlanNone || quota < 0 {
			continue
		}
		c.quotas[plan] = quota
	}

	for id, raw := range pricePlans {
		if plan := NormalizePlan(raw); plan != PlanNone {
			c.pricePlans[id] = plan
		}
	}
	for id, raw := range productPlans {
		if plan := NormalizePlan(raw); plan != PlanNone {
			c.productPlans[id] = plan
		}
	}

	return c
}

// QuotaFor returns the monthly lead quota for the plan. PlanNone is 0.
func (c *Catalog) QuotaFor(plan Plan) int {
	return c.quotas[plan]
}

// PlanForPriceID resolves a billing price identifier to a plan.
// Unmapped identifiers resolve to PlanNone.
func (c *Catalog) PlanForPriceID(id string) Plan {
	if plan, ok := c.pricePlans[id]; ok {
		return plan
	}
	return PlanNone
}

// PlanForProductID resolves a billing product identifier to a plan.
// Unmapped identifiers resolve to PlanNone.
func (c *Catalog) PlanForProductID(id string) Plan {
	if plan, ok := c.productPlans[id]; ok {
		return plan
	}
	return PlanNone
}

// PlanForItems resolves the best plan derivable from a set of line
// items: price mappings are consulted first, then product mappings,
// and the highest mapped tier wins.
func (c *Catalog) PlanForItems(items []SubscriptionItem) Plan {
	best := PlanNone
	for _, item := range items {
		plan := c.PlanForPriceID(item.PriceID)
		if plan == PlanNone {
			plan = c.PlanForProductID(item.ProductID)
		}
		if plan.Tier() > best.Tier() {
			best = plan
		}
	}
	return best
}
