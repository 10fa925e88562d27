package billing

import "strings"

// Plan is a subscription tier. Every user is always on exactly one of
// the four tiers; unknown or missing values normalize to PlanNone.
type Plan string

const (
	PlanNone       Plan = "none"
	PlanBasic      Plan = "basic"
	PlanBusiness   Plan = "business"
	PlanEnterprise Plan = "enterprise"
)

// NormalizePlan maps any raw input to one of the four plan values.
// It is a total function: unknown and empty inputs yield PlanNone.
func NormalizePlan(raw string) Plan {
	switch Plan(strings.ToLower(strings.TrimSpace(raw))) {
	case PlanBasic:
		return PlanBasic
	case PlanBusiness:
		return PlanBusiness
	case PlanEnterprise:
		return PlanEnterprise
	default:
		return PlanNone
	}
}

// Tier returns the ordering rank of the plan, used to pick the best
// plan when a subscription carries multiple mapped line items.
func (p Plan) Tier() int {
	switch p {
	case PlanBasic:
		return 1
	case PlanBusiness:
		return 2
	case PlanEnterprise:
		return 3
	default:
		return 0
	}
}

// IsPaid reports whether the plan grants a lead quota.
func (p Plan) IsPaid() bool {
	return p != PlanNone
}

func (p Plan) String() string {
	return string(p)
}
