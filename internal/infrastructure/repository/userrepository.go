package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/zevix-io/zevix/internal/domain/billing"
	"github.com/zevix-io/zevix/internal/domain/user"
	"github.com/zevix-io/zevix/internal/infrastructure/persistence/mappers"
	"github.com/zevix-io/zevix/internal/infrastructure/persistence/models"
	apperrors "github.com/zevix-io/zevix/internal/shared/errors"
	"github.com/zevix-io/zevix/internal/shared/logger"
	"github.com/zevix-io/zevix/internal/shared/utils"
)

// UserRepository implements the user repository interface on GORM
type UserRepository struct {
	db     *gorm.DB
	mapper mappers.UserMapper
	logger logger.Interface
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB, logger logger.Interface) user.Repository {
	return &UserRepository{
		db:     db,
		mapper: mappers.NewUserMapper(),
		logger: logger,
	}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, userEntity *user.User) error {
	model, err := r.mapper.ToModel(userEntity)
	if err != nil {
		r.logger.Errorw("failed to map user entity to model", "error", err)
		return fmt.Errorf("failed to map user entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("email_taken", "email is already registered")
		}
		r.logger.Errorw("failed to create user in database", "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	if err := userEntity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set user ID: %w", err)
	}

	r.logger.Infow("user created", "id", model.ID, "email", model.Email)
	return nil
}

// GetByEmail retrieves a user by normalized email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model models.UserModel

	email = utils.NormalizeEmail(email)
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("get user %s: %w", email, user.ErrNotFound)
		}
		r.logger.Errorw("failed to get user by email", "email", email, "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map user model to entity", "email", email, "error", err)
		return nil, fmt.Errorf("failed to map user: %w", err)
	}
	return entity, nil
}

// UpdatePlan writes the cached plan and validity timestamp for a user
func (r *UserRepository) UpdatePlan(ctx context.Context, email string, plan billing.Plan, validUntil int64) error {
	email = utils.NormalizeEmail(email)
	result := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"plan":        plan.String(),
			"valid_until": validUntil,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update user plan", "email", email, "plan", plan, "error", result.Error)
		return fmt.Errorf("failed to update plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update plan for %s: %w", email, user.ErrNotFound)
	}

	r.logger.Infow("user plan updated", "email", email, "plan", plan, "valid_until", validUntil)
	return nil
}
