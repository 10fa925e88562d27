package billing

import (
	"context"

	domainbilling "github.com/zevix-io/zevix/internal/domain/billing"
)

// CheckoutLineItem is one purchased line of a checkout session.
type CheckoutLineItem struct {
	PriceID   string
	ProductID string
}

// CheckoutSession is the billing system's view of one checkout,
// reduced to the fields plan application needs. The several email
// fields reflect the different places the billing system may carry the
// buyer's address depending on how the session was created.
type CheckoutSession struct {
	ID                   string
	Status               string
	PaymentStatus        string
	Metadata             map[string]string
	ClientReferenceID    string
	CustomerEmail        string
	CustomerDetailsEmail string
	CustomerID           string
	LineItems            []CheckoutLineItem
}

// Gateway abstracts the external billing system. The stripe
// implementation lives in infrastructure; tests use fakes.
type Gateway interface {
	// SubscriptionsByEmail lists all subscriptions across every
	// customer record matching the email.
	SubscriptionsByEmail(ctx context.Context, email string) ([]domainbilling.Subscription, error)

	// CheckoutSession retrieves a checkout session with its line items.
	CheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)

	// CustomerEmail resolves a customer identifier to its email address.
	CustomerEmail(ctx context.Context, customerID string) (string, error)
}
