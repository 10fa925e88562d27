package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/zevix-io/zevix/internal/domain/usage"
	"github.com/zevix-io/zevix/internal/infrastructure/persistence/models"
)

// UsageMapper handles the conversion between usage ledgers and their
// persistence models, including the JSON encoding of the identifier set.
type UsageMapper interface {
	ToEntity(model *models.UsageModel) (*usage.Ledger, error)
	ToModel(entity *usage.Ledger) (*models.UsageModel, error)
}

type usageMapperImpl struct{}

// NewUsageMapper creates a new usage mapper
func NewUsageMapper() UsageMapper {
	return &usageMapperImpl{}
}

func (m *usageMapperImpl) ToEntity(model *models.UsageModel) (*usage.Ledger, error) {
	if model == nil {
		return nil, nil
	}

	var ids []string
	if len(model.UsedIDs) > 0 {
		if err := json.Unmarshal(model.UsedIDs, &ids); err != nil {
			return nil, fmt.Errorf("failed to decode used ids: %w", err)
		}
	}

	ledger, err := usage.ReconstructLedger(model.UserEmail, model.Month, model.Used, ids, model.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct ledger: %w", err)
	}
	return ledger, nil
}

func (m *usageMapperImpl) ToModel(entity *usage.Ledger) (*models.UsageModel, error) {
	if entity == nil {
		return nil, nil
	}

	encoded, err := json.Marshal(entity.UsedIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to encode used ids: %w", err)
	}

	return &models.UsageModel{
		UserEmail: entity.UserEmail(),
		Month:     entity.Month(),
		Used:      entity.Used(),
		UsedIDs:   datatypes.JSON(encoded),
		UpdatedAt: entity.UpdatedAt(),
	}, nil
}

// EncodeIDs marshals an identifier slice into the JSON column form.
func EncodeIDs(ids []string) (datatypes.JSON, error) {
	if ids == nil {
		ids = []string{}
	}
	encoded, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to encode used ids: %w", err)
	}
	return datatypes.JSON(encoded), nil
}
