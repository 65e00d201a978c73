package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity is an append-only audit record, read only by admin reporting.
type Activity struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"` // Acting user.

	Action   string `gorm:"type:varchar(64);not null"` // Action verb (create, update, deploy, delete).
	Resource string `gorm:"type:varchar(64);not null"` // Affected resource type.

	Metadata datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // Free-form detail.

	Timestamp time.Time `gorm:"not null;autoCreateTime;index"` // Record time.
}
