package user

import (
	"errors"
	"strings"
	"time"

	"github.com/zevix-io/zevix/internal/domain/billing"
)

var (
	ErrEmptyEmail   = errors.New("email cannot be empty")
	ErrEmptyHash    = errors.New("password hash cannot be empty")
	ErrNotFound     = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
	ErrInvalidEmail = errors.New("email is not a valid address")
)

// User is an account in the identity store. Email is the identity key,
// normalized to lowercase; the plan field is a locally cached copy of
// the billing system's view, reconciled opportunistically.
type User struct {
	id           uint
	email        string
	passwordHash string
	plan         billing.Plan
	validUntil   int64 // epoch milliseconds, 0 when never set
	createdAt    time.Time
	updatedAt    time.Time
}

// NewUser creates an account with no active plan.
func NewUser(email, passwordHash string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmptyEmail
	}
	if passwordHash == "" {
		return nil, ErrEmptyHash
	}

	now := time.Now()
	return &User{
		email:        email,
		passwordHash: passwordHash,
		plan:         billing.PlanNone,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructUser rebuilds a user from persisted state. The stored
// plan string is normalized so unknown values collapse to none.
func ReconstructUser(id uint, email, passwordHash, plan string, validUntil int64, createdAt, updatedAt time.Time) (*User, error) {
	if id == 0 {
		return nil, errors.New("user ID cannot be zero")
	}
	u, err := NewUser(email, passwordHash)
	if err != nil {
		return nil, err
	}
	u.id = id
	u.plan = billing.NormalizePlan(plan)
	u.validUntil = validUntil
	u.createdAt = createdAt
	u.updatedAt = updatedAt
	return u, nil
}

// ChangePlan updates the cached plan and its validity timestamp.
func (u *User) ChangePlan(plan billing.Plan, validUntil int64) {
	u.plan = plan
	u.validUntil = validUntil
	u.updatedAt = time.Now()
}

// RefreshValidity advances the validity timestamp without touching the plan.
func (u *User) RefreshValidity(validUntil int64) {
	u.validUntil = validUntil
	u.updatedAt = time.Now()
}

func (u *User) SetID(id uint) error {
	if id == 0 {
		return errors.New("user ID cannot be zero")
	}
	u.id = id
	return nil
}

func (u *User) ID() uint             { return u.id }
func (u *User) Email() string        { return u.email }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) Plan() billing.Plan   { return u.plan }
func (u *User) ValidUntil() int64    { return u.validUntil }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }
