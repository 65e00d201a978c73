package models

import (
	"time"

	"gorm.io/datatypes"
)

// AIModel is an admin-managed catalog entry describing a selectable
// assistant backend.
type AIModel struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string `gorm:"type:text;not null;uniqueIndex"` // Stable model identifier.
	DisplayName string `gorm:"type:text;not null"`             // Human-readable name.
	Provider    string `gorm:"type:varchar(32);not null"`      // Vendor (openai, anthropic, google).

	MaxTokens              int     `gorm:"not null;default:0"`                     // Context window size.
	PricePerThousandTokens float64 `gorm:"type:decimal(10,6);not null;default:0"`  // List price per 1k tokens.

	Enabled     bool   `gorm:"not null;default:true"` // Whether users may select it.
	Description string `gorm:"type:text"`             // Optional description.

	Capabilities datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // Capability flags (vision, function_calling, streaming).

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
