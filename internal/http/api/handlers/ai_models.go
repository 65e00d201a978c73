package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	dbutil "github.com/emergent-labs/emergent-server/internal/db"
	"github.com/emergent-labs/emergent-server/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AIModelHandler serves the AI model catalog.
type AIModelHandler struct {
	db *gorm.DB
}

// NewAIModelHandler constructs an AIModelHandler.
func NewAIModelHandler(db *gorm.DB) *AIModelHandler {
	return &AIModelHandler{db: db}
}

// ListEnabled returns models selectable by users.
func (h *AIModelHandler) ListEnabled(c *gin.Context) {
	h.list(c, true)
}

// ListAll returns the full catalog, enabled or not.
func (h *AIModelHandler) ListAll(c *gin.Context) {
	h.list(c, false)
}

func (h *AIModelHandler) list(c *gin.Context, enabledOnly bool) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.AIModel{})
	if enabledOnly {
		q = q.Where("enabled = ?", true)
	}
	var rows []models.AIModel
	if errFind := q.Order("name ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list models failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, aiModelView(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"models": out})
}

// modelRequest defines the request body for model creation and updates.
type modelRequest struct {
	Name                   *string         `json:"name"`
	DisplayName            *string         `json:"displayName"`
	Provider               *string         `json:"provider"`
	MaxTokens              *int            `json:"maxTokens"`
	PricePerThousandTokens *float64        `json:"pricePerThousandTokens"`
	Enabled                *bool           `json:"enabled"`
	Description            *string         `json:"description"`
	Capabilities           json.RawMessage `json:"capabilities"`
}

// Create adds a model to the catalog.
func (h *AIModelHandler) Create(c *gin.Context) {
	var body modelRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Name == nil || strings.TrimSpace(*body.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}
	if body.DisplayName == nil || strings.TrimSpace(*body.DisplayName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing display name"})
		return
	}
	if body.Provider == nil || strings.TrimSpace(*body.Provider) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing provider"})
		return
	}

	now := time.Now().UTC()
	model := models.AIModel{
		Name:         strings.TrimSpace(*body.Name),
		DisplayName:  strings.TrimSpace(*body.DisplayName),
		Provider:     strings.TrimSpace(*body.Provider),
		Enabled:      true,
		Capabilities: datatypes.JSON([]byte("{}")),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if body.MaxTokens != nil {
		model.MaxTokens = *body.MaxTokens
	}
	if body.PricePerThousandTokens != nil {
		model.PricePerThousandTokens = *body.PricePerThousandTokens
	}
	if body.Enabled != nil {
		model.Enabled = *body.Enabled
	}
	if body.Description != nil {
		model.Description = strings.TrimSpace(*body.Description)
	}
	if len(body.Capabilities) > 0 && json.Valid(body.Capabilities) {
		model.Capabilities = datatypes.JSON(body.Capabilities)
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&model).Error; errCreate != nil {
		if dbutil.IsUniqueViolation(errCreate) {
			c.JSON(http.StatusConflict, gin.H{"error": "model already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create model failed"})
		return
	}
	c.JSON(http.StatusCreated, aiModelView(&model))
}

// Update patches catalog fields on a model.
func (h *AIModelHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid model id"})
		return
	}
	var body modelRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if body.DisplayName != nil {
		updates["display_name"] = strings.TrimSpace(*body.DisplayName)
	}
	if body.MaxTokens != nil {
		updates["max_tokens"] = *body.MaxTokens
	}
	if body.PricePerThousandTokens != nil {
		updates["price_per_thousand_tokens"] = *body.PricePerThousandTokens
	}
	if body.Enabled != nil {
		updates["enabled"] = *body.Enabled
	}
	if body.Description != nil {
		updates["description"] = strings.TrimSpace(*body.Description)
	}
	if len(body.Capabilities) > 0 && json.Valid(body.Capabilities) {
		updates["capabilities"] = datatypes.JSON(body.Capabilities)
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.AIModel{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update model failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "model not found"})
		return
	}

	var model models.AIModel
	if errFind := h.db.WithContext(c.Request.Context()).First(&model, id).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reload model failed"})
		return
	}
	c.JSON(http.StatusOK, aiModelView(&model))
}

// Delete removes a model from the catalog.
func (h *AIModelHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid model id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.AIModel{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete model failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "model not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "model deleted successfully"})
}

// aiModelView renders a catalog model payload.
func aiModelView(model *models.AIModel) gin.H {
	return gin.H{
		"id":                        model.ID,
		"name":                      model.Name,
		"display_name":              model.DisplayName,
		"provider":                  model.Provider,
		"max_tokens":                model.MaxTokens,
		"price_per_thousand_tokens": model.PricePerThousandTokens,
		"enabled":                   model.Enabled,
		"description":               model.Description,
		"capabilities":              model.Capabilities,
		"created_at":                model.CreatedAt,
		"updated_at":                model.UpdatedAt,
	}
}
