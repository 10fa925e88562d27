package billing

import "time"

// SubscriptionStatus mirrors the external billing system's subscription
// lifecycle states as plain strings.
type SubscriptionStatus string

const (
	StatusActive            SubscriptionStatus = "active"
	StatusTrialing          SubscriptionStatus = "trialing"
	StatusPastDue           SubscriptionStatus = "past_due"
	StatusUnpaid            SubscriptionStatus = "unpaid"
	StatusIncomplete        SubscriptionStatus = "incomplete"
	StatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	StatusCanceled          SubscriptionStatus = "canceled"
)

// Rank orders statuses by how strongly they assert a live entitlement.
// Canceled and incomplete-expired never qualify.
func (s SubscriptionStatus) Rank() int {
	switch s {
	case StatusActive:
		return 4
	case StatusTrialing:
		return 3
	case StatusPastDue:
		return 2
	default:
		return 0
	}
}

// Alive reports whether the status still grants an entitlement.
// Past-due stays alive: a missed payment is not a cancellation.
func (s SubscriptionStatus) Alive() bool {
	return s.Rank() >= StatusPastDue.Rank()
}

// SubscriptionItem is one line item of an external subscription,
// identified by its billing price and product identifiers.
type SubscriptionItem struct {
	PriceID   string
	ProductID string
}

// Subscription is the external billing system's view of one
// subscription, reduced to the fields reconciliation needs.
type Subscription struct {
	ID        string
	Status    SubscriptionStatus
	PeriodEnd time.Time
	Created   time.Time
	Items     []SubscriptionItem
}

// RanksAbove reports whether s outranks other. The rank tuple is
// (status rank, period end, creation time), compared in that order.
func (s Subscription) RanksAbove(other Subscription) bool {
	if s.Status.Rank() != other.Status.Rank() {
		return s.Status.Rank() > other.Status.Rank()
	}
	if !s.PeriodEnd.Equal(other.PeriodEnd) {
		return s.PeriodEnd.After(other.PeriodEnd)
	}
	return s.Created.After(other.Created)
}

// BestSubscription selects the highest-ranked alive subscription.
// The second return value is false when no subscription qualifies.
func BestSubscription(subs []Subscription) (Subscription, bool) {
	var best Subscription
	found := false
	for _, sub := range subs {
		if !sub.Status.Alive() {
			continue
		}
		if !found || sub.RanksAbove(best) {
			best = sub
			found = true
		}
	}
	return best, found
}
