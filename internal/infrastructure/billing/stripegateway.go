package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"golang.org/x/sync/errgroup"

	appbilling "github.com/zevix-io/zevix/internal/application/billing"
	domainbilling "github.com/zevix-io/zevix/internal/domain/billing"
	"github.com/zevix-io/zevix/internal/shared/logger"
)

// StripeGateway implements the billing gateway on the Stripe API.
// One email can match several customer records (checkout creates a new
// customer when none is referenced), so subscription listing fans out
// over every match.
type StripeGateway struct {
	api    *client.API
	logger logger.Interface
}

var _ appbilling.Gateway = (*StripeGateway)(nil)

// NewStripeGateway creates a gateway bound to the given secret key.
func NewStripeGateway(secretKey string, logger logger.Interface) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api, logger: logger}
}

// SubscriptionsByEmail lists all subscriptions across every customer
// record matching the email, in any status.
func (g *StripeGateway) SubscriptionsByEmail(ctx context.Context, email string) ([]domainbilling.Subscription, error) {
	customerParams := &stripe.CustomerListParams{Email: stripe.String(email)}
	customerParams.Context = ctx

	var customerIDs []string
	iter := g.api.Customers.List(customerParams)
	for iter.Next() {
		customerIDs = append(customerIDs, iter.Customer().ID)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list customers for %s: %w", email, err)
	}
	if len(customerIDs) == 0 {
		return nil, nil
	}

	var (
		mu   sync.Mutex
		subs []domainbilling.Subscription
	)
	group, groupCtx := errgroup.WithContext(ctx)
	for _, customerID := range customerIDs {
		customerID := customerID
		group.Go(func() error {
			listed, err := g.listSubscriptions(groupCtx, customerID)
			if err != nil {
				return err
			}
			mu.Lock()
			subs = append(subs, listed...)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list subscriptions for %s: %w", email, err)
	}

	g.logger.Debugw("listed subscriptions",
		"email", email, "customers", len(customerIDs), "subscriptions", len(subs))
	return subs, nil
}

func (g *StripeGateway) listSubscriptions(ctx context.Context, customerID string) ([]domainbilling.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Context = ctx
	params.AddExpand("data.items.data.price")

	var subs []domainbilling.Subscription
	iter := g.api.Subscriptions.List(params)
	for iter.Next() {
		subs = append(subs, convertSubscription(iter.Subscription()))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

// CheckoutSession retrieves a checkout session with its line items.
func (g *StripeGateway) CheckoutSession(ctx context.Context, sessionID string) (*appbilling.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items")

	session, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session %s: %w", sessionID, err)
	}
	return ConvertCheckoutSession(session), nil
}

// CustomerEmail resolves a customer identifier to its email address.
func (g *StripeGateway) CustomerEmail(ctx context.Context, customerID string) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	customer, err := g.api.Customers.Get(customerID, params)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve customer %s: %w", customerID, err)
	}
	return customer.Email, nil
}

func convertSubscription(sub *stripe.Subscription) domainbilling.Subscription {
	converted := domainbilling.Subscription{
		ID:        sub.ID,
		Status:    domainbilling.SubscriptionStatus(sub.Status),
		PeriodEnd: time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
		Created:   time.Unix(sub.Created, 0).UTC(),
	}
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item.Price == nil {
				continue
			}
			converted.Items = append(converted.Items, domainbilling.SubscriptionItem{
				PriceID:   item.Price.ID,
				ProductID: productID(item.Price.Product),
			})
		}
	}
	return converted
}

// ConvertCheckoutSession maps a Stripe checkout session onto the
// application's view of it. Exported because the webhook handler also
// decodes raw sessions from event payloads.
func ConvertCheckoutSession(session *stripe.CheckoutSession) *appbilling.CheckoutSession {
	if session == nil {
		return nil
	}

	converted := &appbilling.CheckoutSession{
		ID:                session.ID,
		Status:            string(session.Status),
		PaymentStatus:     string(session.PaymentStatus),
		Metadata:          session.Metadata,
		ClientReferenceID: session.ClientReferenceID,
		CustomerEmail:     session.CustomerEmail,
	}
	if session.CustomerDetails != nil {
		converted.CustomerDetailsEmail = session.CustomerDetails.Email
	}
	if session.Customer != nil {
		converted.CustomerID = session.Customer.ID
	}
	if session.LineItems != nil {
		for _, li := range session.LineItems.Data {
			if li.Price == nil {
				continue
			}
			converted.LineItems = append(converted.LineItems, appbilling.CheckoutLineItem{
				PriceID:   li.Price.ID,
				ProductID: productID(li.Price.Product),
			})
		}
	}
	return converted
}

func productID(product *stripe.Product) string {
	if product == nil {
		return ""
	}
	return product.ID
}
