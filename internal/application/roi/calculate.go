package roi

import (
	"fmt"
	"math"

	apperrors "github.com/zevix-io/zevix/internal/shared/errors"
)

// Monthly subscription prices per tier, used to put the projected
// revenue in relation to the plan cost.
const (
	basicPrice      = 69
	businessPrice   = 100
	enterprisePrice = 200
)

// Input bounds mirror the plan quotas: the smallest plan delivers 500
// leads a month, the largest 4500.
const (
	minLeads      = 500
	maxLeads      = 4500
	minConversion = 0.5
	maxConversion = 10
	minRevenue    = 100
	maxRevenue    = 1000000
)

// CalculateCommand carries the prospect's assumptions.
type CalculateCommand struct {
	MonthlyLeads       int     `json:"monthly_leads"`
	ConversionRate     float64 `json:"conversion_rate"`
	RevenuePerCustomer float64 `json:"revenue_per_customer"`
}

// CalculateResult is the projection shown on the marketing site.
type CalculateResult struct {
	Customers      int     `json:"customers"`
	MonthlyRevenue float64 `json:"monthly_revenue"`
	YearlyRevenue  float64 `json:"yearly_revenue"`
	PlanPrice      int     `json:"plan_price"`
	ROI            float64 `json:"roi"`
}

// Calculate projects revenue from lead volume, conversion rate, and
// revenue per customer, against the price of the smallest plan that
// covers the volume.
func Calculate(cmd CalculateCommand) (*CalculateResult, error) {
	if cmd.MonthlyLeads < minLeads || cmd.MonthlyLeads > maxLeads {
		return nil, apperrors.NewValidationError("invalid_input",
			fmt.Sprintf("monthly_leads must be between %d and %d", minLeads, maxLeads))
	}
	if cmd.ConversionRate < minConversion || cmd.ConversionRate > maxConversion {
		return nil, apperrors.NewValidationError("invalid_input",
			fmt.Sprintf("conversion_rate must be between %.1f and %.0f percent", minConversion, float64(maxConversion)))
	}
	if cmd.RevenuePerCustomer < minRevenue || cmd.RevenuePerCustomer > maxRevenue {
		return nil, apperrors.NewValidationError("invalid_input",
			fmt.Sprintf("revenue_per_customer must be between %d and %d", minRevenue, maxRevenue))
	}

	price := planPriceForLeads(cmd.MonthlyLeads)
	// Customers are rounded to a whole number before revenue is
	// projected; fractional customers do not buy anything.
	customers := int(math.Round(float64(cmd.MonthlyLeads) * cmd.ConversionRate / 100))
	monthly := float64(customers) * cmd.RevenuePerCustomer
	yearly := monthly * 12
	roi := (monthly - float64(price)) / float64(price) * 100

	return &CalculateResult{
		Customers:      customers,
		MonthlyRevenue: monthly,
		YearlyRevenue:  yearly,
		PlanPrice:      price,
		ROI:            round2(roi),
	}, nil
}

// planPriceForLeads picks the cheapest tier whose quota covers the
// requested lead volume.
func planPriceForLeads(leads int) int {
	switch {
	case leads <= 500:
		return basicPrice
	case leads <= 1000:
		return businessPrice
	default:
		return enterprisePrice
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
