package user

import (
	"context"

	"github.com/zevix-io/zevix/internal/domain/billing"
)

// Repository persists user accounts keyed by email.
type Repository interface {
	// Create inserts a new user and assigns its ID. A duplicate email
	// yields a conflict error.
	Create(ctx context.Context, u *User) error

	// GetByEmail returns the user for the normalized email, or an error
	// wrapping ErrNotFound when no such account exists.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpdatePlan writes the cached plan and its validity timestamp for
	// the user identified by email.
	UpdatePlan(ctx context.Context, email string, plan billing.Plan, validUntil int64) error
}
