package models

import (
	"time"

	"gorm.io/datatypes"
)

// UsageModel represents the database persistence model for monthly
// consumption ledgers. UsedIDs stores the consumed lead identifiers as
// a JSON array so duplicate submissions can be detected server-side.
type UsageModel struct {
	ID        uint           `gorm:"primarykey"`
	UserEmail string         `gorm:"not null;size:255;uniqueIndex:idx_usage_user_month"`
	Month     string         `gorm:"not null;size:7;uniqueIndex:idx_usage_user_month"`
	Used      int            `gorm:"not null;default:0"`
	UsedIDs   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (UsageModel) TableName() string {
	return "usage_ledgers"
}
