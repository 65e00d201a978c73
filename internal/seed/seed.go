// Package seed installs the default catalogs and bootstrap accounts.
// Every function is idempotent: existing rows are left untouched.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/emergent-labs/emergent-server/internal/models"
	"github.com/emergent-labs/emergent-server/internal/security"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Bootstrap account credentials. Intended for local development and first
// deploys; rotate the admin password in production.
const (
	AdminEmail    = "admin@emergent.com"
	adminPassword = "admin123"
	TestEmail     = "test@example.com"
	testPassword  = "test123"
)

// All installs every default: AI model catalog, MCP tool catalog, and the
// bootstrap accounts.
func All(ctx context.Context, db *gorm.DB) error {
	if err := AIModels(ctx, db); err != nil {
		return err
	}
	if err := MCPTools(ctx, db); err != nil {
		return err
	}
	return Users(ctx, db)
}

// AIModels installs the default model catalog when it is empty.
func AIModels(ctx context.Context, db *gorm.DB) error {
	var count int64
	if errCount := db.WithContext(ctx).Model(&models.AIModel{}).Count(&count).Error; errCount != nil {
		return errCount
	}
	if count > 0 {
		log.WithField("count", count).Debug("seed: ai models already present")
		return nil
	}

	allCaps := datatypes.JSON([]byte(`{"vision":true,"function_calling":true,"streaming":true}`))
	textCaps := datatypes.JSON([]byte(`{"vision":false,"function_calling":true,"streaming":true}`))
	now := time.Now().UTC()
	defaults := []models.AIModel{
		{
			Name:                   "claude-4.5-sonnet",
			DisplayName:            "Claude 4.5 Sonnet",
			Provider:               "anthropic",
			MaxTokens:              200000,
			PricePerThousandTokens: 0.003,
			Enabled:                true,
			Description:            "Most balanced model for general use",
			Capabilities:           allCaps,
		},
		{
			Name:                   "claude-4.5-opus",
			DisplayName:            "Claude 4.5 Opus",
			Provider:               "anthropic",
			MaxTokens:              200000,
			PricePerThousandTokens: 0.015,
			Enabled:                true,
			Description:            "Most powerful model for complex tasks",
			Capabilities:           allCaps,
		},
		{
			Name:                   "claude-sonnet-1m",
			DisplayName:            "Claude Sonnet 1M",
			Provider:               "anthropic",
			MaxTokens:              1000000,
			PricePerThousandTokens: 0.003,
			Enabled:                true,
			Description:            "Extended context window for large codebases",
			Capabilities:           textCaps,
		},
		{
			Name:                   "gpt-5.2",
			DisplayName:            "GPT-5.2",
			Provider:               "openai",
			MaxTokens:              128000,
			PricePerThousandTokens: 0.010,
			Enabled:                true,
			Description:            "OpenAI's most advanced model",
			Capabilities:           allCaps,
		},
		{
			Name:                   "gpt-5.1",
			DisplayName:            "GPT-5.1",
			Provider:               "openai",
			MaxTokens:              128000,
			PricePerThousandTokens: 0.008,
			Enabled:                true,
			Description:            "Fast and cost-effective",
			Capabilities:           allCaps,
		},
		{
			Name:                   "gemini-3-pro",
			DisplayName:            "Gemini 3 Pro",
			Provider:               "google",
			MaxTokens:              2000000,
			PricePerThousandTokens: 0.002,
			Enabled:                true,
			Description:            "Google's most capable model with massive context",
			Capabilities:           allCaps,
		},
	}
	for i := range defaults {
		defaults[i].CreatedAt = now
		defaults[i].UpdatedAt = now
	}

	if errCreate := db.WithContext(ctx).Create(&defaults).Error; errCreate != nil {
		return errCreate
	}
	log.WithField("count", len(defaults)).Info("seed: installed default ai models")
	return nil
}

// MCPTools installs the default tool catalog when it is empty.
func MCPTools(ctx context.Context, db *gorm.DB) error {
	var count int64
	if errCount := db.WithContext(ctx).Model(&models.MCPTool{}).Count(&count).Error; errCount != nil {
		return errCount
	}
	if count > 0 {
		log.WithField("count", count).Debug("seed: mcp tools already present")
		return nil
	}

	emptySchema := datatypes.JSON([]byte("{}"))
	now := time.Now().UTC()
	defaults := []models.MCPTool{
		{
			Name:           "memory",
			DisplayName:    "Memory MCP",
			Description:    "Stores conversation memory and context across sessions",
			Type:           "memory",
			RequiresAPIKey: false,
			Enabled:        true,
			Icon:           "🧠",
			ConfigSchema:   emptySchema,
		},
		{
			Name:           "supabase",
			DisplayName:    "Supabase MCP",
			Description:    "Connect to Supabase for database operations",
			Type:           "supabase",
			RequiresAPIKey: true,
			Enabled:        true,
			Icon:           "🗄️",
			ConfigSchema: datatypes.JSON([]byte(`{` +
				`"type":"object",` +
				`"properties":{` +
				`"apiKey":{"type":"string","description":"Supabase API Key"},` +
				`"projectUrl":{"type":"string","description":"Supabase Project URL"}},` +
				`"required":["apiKey","projectUrl"]}`)),
		},
		{
			Name:           "notion",
			DisplayName:    "Notion MCP",
			Description:    "Read and write pages in Notion workspace",
			Type:           "notion",
			RequiresAPIKey: true,
			Enabled:        true,
			Icon:           "📝",
			ConfigSchema: datatypes.JSON([]byte(`{` +
				`"type":"object",` +
				`"properties":{` +
				`"apiKey":{"type":"string","description":"Notion Integration Token"},` +
				`"databaseId":{"type":"string","description":"Default Database ID"}},` +
				`"required":["apiKey"]}`)),
		},
		{
			Name:           "custom",
			DisplayName:    "Custom MCP Server",
			Description:    "Connect to your own custom MCP server",
			Type:           "custom",
			RequiresAPIKey: false,
			Enabled:        true,
			Icon:           "🔧",
			ConfigSchema: datatypes.JSON([]byte(`{` +
				`"type":"object",` +
				`"properties":{` +
				`"endpoint":{"type":"string","description":"Custom MCP Server Endpoint"}},` +
				`"required":["endpoint"]}`)),
		},
	}
	for i := range defaults {
		defaults[i].CreatedAt = now
		defaults[i].UpdatedAt = now
	}

	if errCreate := db.WithContext(ctx).Create(&defaults).Error; errCreate != nil {
		return errCreate
	}
	log.WithField("count", len(defaults)).Info("seed: installed default mcp tools")
	return nil
}

// Users installs the bootstrap admin and test accounts when missing.
func Users(ctx context.Context, db *gorm.DB) error {
	if err := ensureUser(ctx, db, models.User{
		Email:              AdminEmail,
		Name:               "Admin User",
		Role:               models.RoleAdmin,
		Provider:           models.ProviderEmail,
		SubscriptionPlan:   models.PlanPro,
		SubscriptionStatus: models.SubscriptionActive,
		Credits:            models.StartingCredits,
	}, adminPassword); err != nil {
		return err
	}
	return ensureUser(ctx, db, models.User{
		Email:              TestEmail,
		Name:               "Test User",
		Role:               models.RoleUser,
		Provider:           models.ProviderEmail,
		SubscriptionPlan:   models.PlanFree,
		SubscriptionStatus: models.SubscriptionActive,
		Credits:            models.StartingCredits,
	}, testPassword)
}

// ensureUser creates the account unless one already holds its email.
func ensureUser(ctx context.Context, db *gorm.DB, user models.User, password string) error {
	var existing models.User
	errFind := db.WithContext(ctx).Where("email = ?", user.Email).First(&existing).Error
	if errFind == nil {
		log.WithField("email", user.Email).Debug("seed: user already present")
		return nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return errFind
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return errHash
	}
	now := time.Now().UTC()
	user.Password = hash
	user.CreatedAt = now
	user.UpdatedAt = now
	if errCreate := db.WithContext(ctx).Create(&user).Error; errCreate != nil {
		return errCreate
	}
	log.WithFields(log.Fields{"email": user.Email, "role": user.Role}).Info("seed: created user")
	return nil
}
