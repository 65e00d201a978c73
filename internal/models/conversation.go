package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// ConversationStatus is the lifecycle state of a conversation.
type ConversationStatus string

// ConversationStatus values.
const (
	// ConversationActive is the initial state.
	ConversationActive ConversationStatus = "active"
	// ConversationArchived marks a conversation hidden from the default list.
	ConversationArchived ConversationStatus = "archived"
	// ConversationDeleted exists in the enum but no code path sets it; the
	// delete operation hard-deletes the record instead.
	ConversationDeleted ConversationStatus = "deleted"
)

// ParseConversationStatus validates a status string from the request boundary.
func ParseConversationStatus(s string) (ConversationStatus, error) {
	switch ConversationStatus(s) {
	case ConversationActive, ConversationArchived, ConversationDeleted:
		return ConversationStatus(s), nil
	}
	return "", fmt.Errorf("unknown conversation status: %q", s)
}

// ConversationSettings configures how the assistant responds in a
// conversation. Stored as a JSON column on Conversation.
type ConversationSettings struct {
	AgentMode     string   `json:"agentMode"`
	UltraThinking bool     `json:"ultraThinking"`
	Model         string   `json:"model"`
	MCPTools      []string `json:"mcpTools"`
	Template      string   `json:"template,omitempty"`
	MaxTokens     int      `json:"maxTokens"`
	Temperature   float64  `json:"temperature"`
}

// DefaultConversationSettings returns the settings applied when a
// conversation is created without any.
func DefaultConversationSettings() ConversationSettings {
	return ConversationSettings{
		AgentMode:   "e1",
		Model:       "claude-4.5-sonnet",
		MCPTools:    []string{},
		MaxTokens:   4096,
		Temperature: 0.7,
	}
}

// GitHubRepo references a source repository linked to a conversation.
type GitHubRepo struct {
	URL         string `json:"url"`
	Branch      string `json:"branch"`
	RepoType    string `json:"repo_type"`
	AccessToken string `json:"access_token,omitempty"`
}

// Conversation represents a user-owned chat session with the assistant.
type Conversation struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"` // Owning user ID.

	ProjectName string         `gorm:"type:text;not null;default:'Untitled Project'"` // Display label.
	Settings    datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"`              // ConversationSettings JSON.
	GitHubRepo  datatypes.JSON `gorm:"type:jsonb"`                                    // Optional GitHubRepo JSON.

	CreditsUsed float64            `gorm:"type:decimal(20,10);not null;default:0"`     // Cumulative credits (see ledger).
	Status      ConversationStatus `gorm:"type:varchar(16);not null;default:'active'"` // Lifecycle state.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
