package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zevix-io/zevix/internal/domain/usage"
	"github.com/zevix-io/zevix/internal/infrastructure/persistence/mappers"
	"github.com/zevix-io/zevix/internal/infrastructure/persistence/models"
	"github.com/zevix-io/zevix/internal/shared/db"
	"github.com/zevix-io/zevix/internal/shared/logger"
	"github.com/zevix-io/zevix/internal/shared/utils"
)

// UsageRepository implements the usage ledger repository on GORM.
// Row locks are only taken on dialects that support SELECT FOR UPDATE;
// SQLite serializes writers on its own.
type UsageRepository struct {
	db     *gorm.DB
	mapper mappers.UsageMapper
	logger logger.Interface
}

// NewUsageRepository creates a new usage ledger repository
func NewUsageRepository(gdb *gorm.DB, logger logger.Interface) usage.Repository {
	return &UsageRepository{
		db:     gdb,
		mapper: mappers.NewUsageMapper(),
		logger: logger,
	}
}

// Get returns the ledger for the user and month, or nil when absent
func (r *UsageRepository) Get(ctx context.Context, userEmail, month string) (*usage.Ledger, error) {
	return r.get(ctx, userEmail, month, false)
}

// GetForUpdate returns the ledger with a row lock; callers must hold a
// transaction on the context
func (r *UsageRepository) GetForUpdate(ctx context.Context, userEmail, month string) (*usage.Ledger, error) {
	return r.get(ctx, userEmail, month, true)
}

func (r *UsageRepository) get(ctx context.Context, userEmail, month string, forUpdate bool) (*usage.Ledger, error) {
	var model models.UsageModel

	tx := db.GetTxFromContext(ctx, r.db)
	if forUpdate && tx.Dialector.Name() == "mysql" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	userEmail = utils.NormalizeEmail(userEmail)
	if err := tx.Where("user_email = ? AND month = ?", userEmail, month).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get usage ledger", "user_email", userEmail, "month", month, "error", err)
		return nil, fmt.Errorf("failed to get usage ledger: %w", err)
	}

	ledger, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map usage model to ledger", "user_email", userEmail, "month", month, "error", err)
		return nil, fmt.Errorf("failed to map usage ledger: %w", err)
	}
	return ledger, nil
}

// CreateIfAbsent lazily inserts an empty ledger row. The insert is a
// no-op when another request already created the row.
func (r *UsageRepository) CreateIfAbsent(ctx context.Context, userEmail, month string) error {
	empty, err := mappers.EncodeIDs(nil)
	if err != nil {
		return err
	}

	model := models.UsageModel{
		UserEmail: utils.NormalizeEmail(userEmail),
		Month:     month,
		Used:      0,
		UsedIDs:   empty,
	}

	tx := db.GetTxFromContext(ctx, r.db)
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_email"}, {Name: "month"}},
		DoNothing: true,
	}).Create(&model).Error
	if err != nil {
		r.logger.Errorw("failed to create usage ledger", "user_email", model.UserEmail, "month", month, "error", err)
		return fmt.Errorf("failed to create usage ledger: %w", err)
	}
	return nil
}

// Save persists the ledger's count and identifier set in one statement
func (r *UsageRepository) Save(ctx context.Context, ledger *usage.Ledger) error {
	encoded, err := mappers.EncodeIDs(ledger.UsedIDs())
	if err != nil {
		return err
	}

	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.UsageModel{}).
		Where("user_email = ? AND month = ?", ledger.UserEmail(), ledger.Month()).
		Updates(map[string]interface{}{
			"used":     ledger.Used(),
			"used_ids": encoded,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to save usage ledger",
			"user_email", ledger.UserEmail(), "month", ledger.Month(), "error", result.Error)
		return fmt.Errorf("failed to save usage ledger: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("save usage ledger for %s %s: no row", ledger.UserEmail(), ledger.Month())
	}
	return nil
}

// Reset zeroes the count and empties the identifier set, if a row exists
func (r *UsageRepository) Reset(ctx context.Context, userEmail, month string) error {
	empty, err := mappers.EncodeIDs(nil)
	if err != nil {
		return err
	}

	tx := db.GetTxFromContext(ctx, r.db)
	err = tx.Model(&models.UsageModel{}).
		Where("user_email = ? AND month = ?", utils.NormalizeEmail(userEmail), month).
		Updates(map[string]interface{}{
			"used":     0,
			"used_ids": empty,
		}).Error
	if err != nil {
		r.logger.Errorw("failed to reset usage ledger", "user_email", userEmail, "month", month, "error", err)
		return fmt.Errorf("failed to reset usage ledger: %w", err)
	}

	r.logger.Infow("usage ledger reset", "user_email", userEmail, "month", month)
	return nil
}
