package user

import (
	"context"
	"fmt"

	domainuser "github.com/zevix-io/zevix/internal/domain/user"
	apperrors "github.com/zevix-io/zevix/internal/shared/errors"
	"github.com/zevix-io/zevix/internal/shared/logger"
	"github.com/zevix-io/zevix/internal/shared/utils"
)

const minPasswordLength = 8

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// RegisterCommand carries a registration request.
type RegisterCommand struct {
	Email    string
	Password string
}

// RegisterResult reports the created account.
type RegisterResult struct {
	Email string `json:"email"`
	Plan  string `json:"plan"`
}

// RegisterUseCase creates accounts. New accounts start with no plan;
// entitlements only ever come from the billing system.
type RegisterUseCase struct {
	userRepo domainuser.Repository
	hasher   PasswordHasher
	logger   logger.Interface
}

// NewRegisterUseCase creates a new register use case
func NewRegisterUseCase(userRepo domainuser.Repository, hasher PasswordHasher, logger logger.Interface) *RegisterUseCase {
	return &RegisterUseCase{
		userRepo: userRepo,
		hasher:   hasher,
		logger:   logger,
	}
}

// Execute registers a new account.
func (uc *RegisterUseCase) Execute(ctx context.Context, cmd RegisterCommand) (*RegisterResult, error) {
	email := utils.NormalizeEmail(cmd.Email)
	if email == "" || !utils.IsValidEmail(email) {
		return nil, apperrors.NewValidationError("invalid_input", "a valid email is required")
	}
	if len(cmd.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError("invalid_input",
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := uc.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := domainuser.NewUser(email, hash)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid_input", err.Error())
	}

	if err := uc.userRepo.Create(ctx, u); err != nil {
		if apperrors.IsConflictError(err) {
			return nil, err
		}
		uc.logger.Errorw("failed to create user", "email", email, "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	uc.logger.Infow("user registered", "email", email)
	return &RegisterResult{Email: u.Email(), Plan: u.Plan().String()}, nil
}
