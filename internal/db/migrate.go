package db

import (
	"fmt"

	"github.com/emergent-labs/emergent-server/internal/models"
	"gorm.io/gorm"
)

// Migrate applies the schema for all collections.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Conversation{},
		&models.Message{},
		&models.CreditTransaction{},
		&models.Activity{},
		&models.AIModel{},
		&models.MCPTool{},
		&models.UserMCPConfig{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}
	return nil
}
