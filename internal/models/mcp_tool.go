package models

import (
	"time"

	"gorm.io/datatypes"
)

// MCPTool is an admin-managed catalog entry describing a pluggable
// integration a conversation may reference. Opaque configuration data to
// the core.
type MCPTool struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string `gorm:"type:text;not null;uniqueIndex"` // Stable tool identifier.
	DisplayName string `gorm:"type:text;not null"`             // Human-readable name.
	Description string `gorm:"type:text;not null"`             // What the tool does.
	Type        string `gorm:"type:varchar(32);not null"`      // Tool category (memory, supabase, notion, custom).

	RequiresAPIKey bool   `gorm:"not null;default:false"`           // Whether a user key is needed.
	Enabled        bool   `gorm:"not null;default:true"`            // Whether users may enable it.
	Icon           string `gorm:"type:varchar(16);default:'🔧'"`    // Display icon.

	ConfigSchema datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // JSON schema for configuration.
	Endpoint     string         `gorm:"type:text"`                        // Custom MCP server endpoint.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// UserMCPConfig stores a user's configuration for one MCP tool.
type UserMCPConfig struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID    uint64 `gorm:"not null;index;uniqueIndex:idx_user_mcp_configs_user_tool"` // Owning user ID.
	MCPToolID uint64 `gorm:"not null;uniqueIndex:idx_user_mcp_configs_user_tool"`       // Configured tool ID.

	APIKey  string         `gorm:"type:text"`                        // User-supplied API key.
	Config  datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // Tool-specific settings.
	Enabled bool           `gorm:"not null;default:true"`            // Whether the config is active.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
