package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// MessageRole identifies who authored a message.
type MessageRole string

// MessageRole values.
const (
	// MessageRoleUser is an end-user message.
	MessageRoleUser MessageRole = "user"
	// MessageRoleAssistant is an assistant response.
	MessageRoleAssistant MessageRole = "assistant"
	// MessageRoleSystem is a system notice.
	MessageRoleSystem MessageRole = "system"
)

// ParseMessageRole validates a role string from the request boundary.
func ParseMessageRole(s string) (MessageRole, error) {
	switch MessageRole(s) {
	case MessageRoleUser, MessageRoleAssistant, MessageRoleSystem:
		return MessageRole(s), nil
	}
	return "", fmt.Errorf("unknown message role: %q", s)
}

// FileAttachment describes a file attached to a message. Stored inside the
// message's attachments JSON column.
type FileAttachment struct {
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	Type       string    `json:"type"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Message is a single entry in a conversation. Immutable once created;
// removed only when its conversation is deleted.
type Message struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	ConversationID uint64 `gorm:"not null;index"` // Parent conversation ID.

	Role    MessageRole `gorm:"type:varchar(16);not null"` // Author role.
	Content string      `gorm:"type:text;not null"`        // Message body.

	Attachments datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // []FileAttachment JSON.
	Metadata    datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // Free-form metadata.

	Timestamp time.Time `gorm:"not null;autoCreateTime;index"` // Creation timestamp.
}
