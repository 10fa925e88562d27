package billing

import (
	"context"

	"github.com/zevix-io/zevix/internal/shared/utils"
)

// emailExtractor is one source of the buyer's address on a checkout
// session. Extractors are tried in a fixed order; the first one that
// yields a valid address wins.
type emailExtractor struct {
	name    string
	extract func(ctx context.Context, session *CheckoutSession, gateway Gateway) string
}

var emailExtractors = []emailExtractor{
	{
		name: "metadata",
		extract: func(_ context.Context, s *CheckoutSession, _ Gateway) string {
			return s.Metadata["email"]
		},
	},
	{
		name: "client_reference_id",
		extract: func(_ context.Context, s *CheckoutSession, _ Gateway) string {
			return s.ClientReferenceID
		},
	},
	{
		name: "customer_email",
		extract: func(_ context.Context, s *CheckoutSession, _ Gateway) string {
			return s.CustomerEmail
		},
	},
	{
		name: "customer_details",
		extract: func(_ context.Context, s *CheckoutSession, _ Gateway) string {
			return s.CustomerDetailsEmail
		},
	},
	{
		name: "customer_record",
		extract: func(ctx context.Context, s *CheckoutSession, gateway Gateway) string {
			if s.CustomerID == "" || gateway == nil {
				return ""
			}
			email, err := gateway.CustomerEmail(ctx, s.CustomerID)
			if err != nil {
				return ""
			}
			return email
		},
	},
}

// extractEmail walks the extractor chain and returns the first valid
// address, normalized, plus the name of the source that produced it.
func extractEmail(ctx context.Context, session *CheckoutSession, gateway Gateway) (string, string) {
	for _, ex := range emailExtractors {
		candidate := utils.NormalizeEmail(ex.extract(ctx, session, gateway))
		if candidate == "" {
			continue
		}
		if !utils.IsValidEmail(candidate) {
			continue
		}
		return candidate, ex.name
	}
	return "", ""
}
