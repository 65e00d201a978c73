package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/emergent-labs/emergent-server/internal/activity"
	"github.com/emergent-labs/emergent-server/internal/authz"
	"github.com/emergent-labs/emergent-server/internal/chat"
	"github.com/emergent-labs/emergent-server/internal/ledger"
	"github.com/emergent-labs/emergent-server/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConversationHandler serves conversation and messaging endpoints.
type ConversationHandler struct {
	db       *gorm.DB
	ledger   *ledger.Ledger
	recorder *activity.Recorder
}

// NewConversationHandler constructs a ConversationHandler.
func NewConversationHandler(db *gorm.DB, led *ledger.Ledger, recorder *activity.Recorder) *ConversationHandler {
	return &ConversationHandler{db: db, ledger: led, recorder: recorder}
}

// List returns the caller's conversations, most recently updated first.
func (h *ConversationHandler) List(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	q := h.db.WithContext(c.Request.Context()).Where("user_id = ?", principal.UserID)
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		parsed, errParse := models.ParseConversationStatus(status)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		q = q.Where("status = ?", parsed)
	}
	var rows []models.Conversation
	if errFind := q.
		Order("updated_at DESC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list conversations failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, conversationView(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"conversations": out})
}

// createConversationRequest defines the request body for creation.
type createConversationRequest struct {
	ProjectName string                       `json:"projectName"`
	Settings    *models.ConversationSettings `json:"settings"`
}

// Create creates a conversation in the active state.
func (h *ConversationHandler) Create(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var body createConversationRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	projectName := strings.TrimSpace(body.ProjectName)
	if projectName == "" {
		projectName = "Untitled Project"
	}
	settings := models.DefaultConversationSettings()
	if body.Settings != nil {
		settings = *body.Settings
	}
	settingsJSON, errMarshal := json.Marshal(settings)
	if errMarshal != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings"})
		return
	}

	now := time.Now().UTC()
	conversation := models.Conversation{
		UserID:      principal.UserID,
		ProjectName: projectName,
		Settings:    datatypes.JSON(settingsJSON),
		Status:      models.ConversationActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&conversation).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create conversation failed"})
		return
	}

	h.recorder.Record(principal.UserID, "create", "conversation", map[string]any{
		"conversationId": conversation.ID,
		"projectName":    conversation.ProjectName,
	})
	c.JSON(http.StatusCreated, conversationView(&conversation))
}

// Get returns one conversation after an ownership check.
func (h *ConversationHandler) Get(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	conversation, ok := h.loadAuthorized(c, principal)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, conversationView(conversation))
}

// Messages returns a conversation's messages in chronological order.
func (h *ConversationHandler) Messages(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	conversation, ok := h.loadAuthorized(c, principal)
	if !ok {
		return
	}
	q := h.db.WithContext(c.Request.Context()).Where("conversation_id = ?", conversation.ID)
	if role := strings.TrimSpace(c.Query("role")); role != "" {
		parsed, errParse := models.ParseMessageRole(role)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
			return
		}
		q = q.Where("role = ?", parsed)
	}
	var rows []models.Message
	if errFind := q.
		Order("timestamp ASC, id ASC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list messages failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, messageView(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

// Archive transitions a conversation to the archived state.
func (h *ConversationHandler) Archive(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	conversation, ok := h.loadAuthorized(c, principal)
	if !ok {
		return
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Conversation{}).
		Where("id = ?", conversation.ID).
		Updates(map[string]any{
			"status":     models.ConversationArchived,
			"updated_at": time.Now().UTC(),
		}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "archive conversation failed"})
		return
	}
	h.recorder.Record(principal.UserID, "archive", "conversation", map[string]any{
		"conversationId": conversation.ID,
	})
	c.JSON(http.StatusOK, gin.H{"message": "conversation archived successfully"})
}

// Delete hard-deletes a conversation and cascades to all of its messages.
func (h *ConversationHandler) Delete(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	conversation, ok := h.loadAuthorized(c, principal)
	if !ok {
		return
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if errDelMessages := tx.Where("conversation_id = ?", conversation.ID).Delete(&models.Message{}).Error; errDelMessages != nil {
			return errDelMessages
		}
		return tx.Delete(&models.Conversation{}, conversation.ID).Error
	})
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete conversation failed"})
		return
	}

	h.recorder.Record(principal.UserID, "delete", "conversation", map[string]any{
		"conversationId": conversation.ID,
	})
	c.JSON(http.StatusOK, gin.H{"message": "conversation deleted successfully"})
}

// sendMessageRequest defines the request body for sending a message.
type sendMessageRequest struct {
	ConversationID uint64                       `json:"conversationId"`
	Content        string                       `json:"content"`
	Attachments    []models.FileAttachment      `json:"attachments"`
	Settings       *models.ConversationSettings `json:"settings"`
}

// SendMessage runs the composite message-send action: ownership check,
// credit gate, persist the user message, optionally overwrite settings,
// synthesize the placeholder assistant reply, then apply the fixed debit.
// A ledger denial happens before any message is persisted. Later steps are
// not rolled back if an earlier one already committed.
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var body sendMessageRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.ConversationID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}
	if strings.TrimSpace(body.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing content"})
		return
	}

	ctx := c.Request.Context()

	var conversation models.Conversation
	if errFind := h.db.WithContext(ctx).First(&conversation, body.ConversationID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if errAuthorize := authz.Authorize(principal, conversation.UserID, false); errAuthorize != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized to access this conversation"})
		return
	}

	if errAllow := h.ledger.Allow(ctx, principal.UserID); errAllow != nil {
		if errors.Is(errAllow, ledger.ErrInsufficientCredits) {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient credits"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "credit check failed"})
		return
	}

	attachmentsJSON, errMarshal := json.Marshal(body.Attachments)
	if errMarshal != nil || body.Attachments == nil {
		attachmentsJSON = []byte("[]")
	}

	now := time.Now().UTC()
	userMessage := models.Message{
		ConversationID: conversation.ID,
		Role:           models.MessageRoleUser,
		Content:        body.Content,
		Attachments:    datatypes.JSON(attachmentsJSON),
		Timestamp:      now,
	}
	if errCreate := h.db.WithContext(ctx).Create(&userMessage).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "persist message failed"})
		return
	}

	conversationUpdates := map[string]any{"updated_at": now}
	if body.Settings != nil {
		settingsJSON, errSettings := json.Marshal(body.Settings)
		if errSettings == nil {
			conversationUpdates["settings"] = datatypes.JSON(settingsJSON)
		}
	}
	if errUpdate := h.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", conversation.ID).
		Updates(conversationUpdates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update conversation failed"})
		return
	}

	assistantMessage := models.Message{
		ConversationID: conversation.ID,
		Role:           models.MessageRoleAssistant,
		Content:        chat.AssistantReply(body.Content),
		Attachments:    datatypes.JSON([]byte("[]")),
		Timestamp:      now,
	}
	if errCreate := h.db.WithContext(ctx).Create(&assistantMessage).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "persist response failed"})
		return
	}

	conversationID := conversation.ID
	if errDebit := h.ledger.Debit(ctx, principal.UserID, ledger.MessageCost, "Message sent", &conversationID); errDebit != nil {
		if errors.Is(errDebit, ledger.ErrInsufficientCredits) {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient credits"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "debit failed"})
		return
	}

	c.JSON(http.StatusCreated, messageView(&userMessage))
}

// loadAuthorized loads the conversation named by the :id param and applies
// the guard. Writes the error response itself when it returns false.
func (h *ConversationHandler) loadAuthorized(c *gin.Context, principal authz.Principal) (*models.Conversation, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return nil, false
	}
	var conversation models.Conversation
	if errFind := h.db.WithContext(c.Request.Context()).First(&conversation, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	if errAuthorize := authz.Authorize(principal, conversation.UserID, false); errAuthorize != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized to access this conversation"})
		return nil, false
	}
	return &conversation, true
}

// conversationView renders a conversation response payload.
func conversationView(conversation *models.Conversation) gin.H {
	return gin.H{
		"id":           conversation.ID,
		"user_id":      conversation.UserID,
		"project_name": conversation.ProjectName,
		"settings":     conversation.Settings,
		"github_repo":  conversation.GitHubRepo,
		"credits_used": conversation.CreditsUsed,
		"status":       conversation.Status,
		"created_at":   conversation.CreatedAt,
		"updated_at":   conversation.UpdatedAt,
	}
}

// messageView renders a message response payload.
func messageView(message *models.Message) gin.H {
	return gin.H{
		"id":              message.ID,
		"conversation_id": message.ConversationID,
		"role":            message.Role,
		"content":         message.Content,
		"attachments":     message.Attachments,
		"metadata":        message.Metadata,
		"timestamp":       message.Timestamp,
	}
}
