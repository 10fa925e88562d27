package usage

import "context"

// Repository persists per-user-per-month ledgers. Read-modify-write
// sequences against one ledger row must run inside a transaction with
// GetForUpdate so concurrent consumers for the same user serialize.
type Repository interface {
	// Get returns the ledger for the user and month, or nil when no
	// row exists yet.
	Get(ctx context.Context, userEmail, month string) (*Ledger, error)

	// GetForUpdate is Get with a row lock; it must be called inside a
	// transaction.
	GetForUpdate(ctx context.Context, userEmail, month string) (*Ledger, error)

	// CreateIfAbsent lazily inserts an empty ledger row. Concurrent
	// first-use by the same user must be race-safe (insert-if-absent).
	CreateIfAbsent(ctx context.Context, userEmail, month string) error

	// Save persists the ledger's count and identifier set in a single
	// statement.
	Save(ctx context.Context, ledger *Ledger) error

	// Reset zeroes the count and empties the identifier set for the
	// user's month, if a row exists.
	Reset(ctx context.Context, userEmail, month string) error
}
