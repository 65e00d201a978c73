package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/emergent-labs/emergent-server/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MCPToolHandler serves the MCP tool catalog and per-user configurations.
type MCPToolHandler struct {
	db *gorm.DB
}

// NewMCPToolHandler constructs an MCPToolHandler.
func NewMCPToolHandler(db *gorm.DB) *MCPToolHandler {
	return &MCPToolHandler{db: db}
}

// ListEnabled returns tools users may enable.
func (h *MCPToolHandler) ListEnabled(c *gin.Context) {
	h.list(c, true)
}

// ListAll returns the full catalog, enabled or not.
func (h *MCPToolHandler) ListAll(c *gin.Context) {
	h.list(c, false)
}

func (h *MCPToolHandler) list(c *gin.Context, enabledOnly bool) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.MCPTool{})
	if enabledOnly {
		q = q.Where("enabled = ?", true)
	}
	var rows []models.MCPTool
	if errFind := q.Order("name ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list tools failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, mcpToolView(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"tools": out})
}

// createToolRequest defines the request body for tool creation.
type createToolRequest struct {
	Name           string          `json:"name"`
	DisplayName    string          `json:"displayName"`
	Description    string          `json:"description"`
	Type           string          `json:"type"`
	RequiresAPIKey bool            `json:"requiresApiKey"`
	Enabled        *bool           `json:"enabled"`
	Icon           string          `json:"icon"`
	ConfigSchema   json.RawMessage `json:"configSchema"`
	Endpoint       string          `json:"endpoint"`
}

// Create adds a tool to the catalog.
func (h *MCPToolHandler) Create(c *gin.Context) {
	var body createToolRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}

	now := time.Now().UTC()
	tool := models.MCPTool{
		Name:           name,
		DisplayName:    strings.TrimSpace(body.DisplayName),
		Description:    strings.TrimSpace(body.Description),
		Type:           strings.TrimSpace(body.Type),
		RequiresAPIKey: body.RequiresAPIKey,
		Enabled:        true,
		Icon:           body.Icon,
		ConfigSchema:   datatypes.JSON([]byte("{}")),
		Endpoint:       strings.TrimSpace(body.Endpoint),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if body.Enabled != nil {
		tool.Enabled = *body.Enabled
	}
	if tool.Icon == "" {
		tool.Icon = "🔧"
	}
	if len(body.ConfigSchema) > 0 && json.Valid(body.ConfigSchema) {
		tool.ConfigSchema = datatypes.JSON(body.ConfigSchema)
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&tool).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create tool failed"})
		return
	}
	c.JSON(http.StatusCreated, mcpToolView(&tool))
}

// toggleRequest defines the request body for enabling/disabling a tool.
type toggleRequest struct {
	Enabled bool `json:"enabled"`
}

// Toggle enables or disables a catalog tool.
func (h *MCPToolHandler) Toggle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tool id"})
		return
	}
	var body toggleRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Model(&models.MCPTool{}).
		Where("id = ?", id).
		Updates(map[string]any{"enabled": body.Enabled, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "toggle tool failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "tool not found"})
		return
	}
	state := "disabled"
	if body.Enabled {
		state = "enabled"
	}
	c.JSON(http.StatusOK, gin.H{"message": "tool " + state + " successfully"})
}

// Delete removes a tool from the catalog.
func (h *MCPToolHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tool id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.MCPTool{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete tool failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "tool not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "tool deleted successfully"})
}

// ListUserConfigs returns the caller's tool configurations.
func (h *MCPToolHandler) ListUserConfigs(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var rows []models.UserMCPConfig
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", principal.UserID).
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list configs failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":          row.ID,
			"mcp_tool_id": row.MCPToolID,
			"api_key":     row.APIKey,
			"config":      row.Config,
			"enabled":     row.Enabled,
			"updated_at":  row.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"configs": out})
}

// saveUserConfigRequest defines the request body for saving a tool config.
type saveUserConfigRequest struct {
	MCPToolID uint64          `json:"mcpToolId"`
	APIKey    string          `json:"apiKey"`
	Config    json.RawMessage `json:"config"`
}

// SaveUserConfig upserts the caller's configuration for one tool.
func (h *MCPToolHandler) SaveUserConfig(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var body saveUserConfigRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.MCPToolID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tool id"})
		return
	}

	ctx := c.Request.Context()

	var tool models.MCPTool
	if errFind := h.db.WithContext(ctx).First(&tool, body.MCPToolID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tool not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	configJSON := []byte("{}")
	if len(body.Config) > 0 && json.Valid(body.Config) {
		configJSON = body.Config
	}

	now := time.Now().UTC()
	var existing models.UserMCPConfig
	errFind := h.db.WithContext(ctx).
		Where("user_id = ? AND mcp_tool_id = ?", principal.UserID, body.MCPToolID).
		First(&existing).Error
	switch {
	case errFind == nil:
		if errUpdate := h.db.WithContext(ctx).Model(&models.UserMCPConfig{}).
			Where("id = ?", existing.ID).
			Updates(map[string]any{
				"api_key":    body.APIKey,
				"config":     datatypes.JSON(configJSON),
				"updated_at": now,
			}).Error; errUpdate != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update config failed"})
			return
		}
	case errors.Is(errFind, gorm.ErrRecordNotFound):
		record := models.UserMCPConfig{
			UserID:    principal.UserID,
			MCPToolID: body.MCPToolID,
			APIKey:    body.APIKey,
			Config:    datatypes.JSON(configJSON),
			Enabled:   true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if errCreate := h.db.WithContext(ctx).Create(&record).Error; errCreate != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "save config failed"})
			return
		}
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "configuration saved successfully"})
}

// mcpToolView renders a catalog tool payload.
func mcpToolView(tool *models.MCPTool) gin.H {
	return gin.H{
		"id":               tool.ID,
		"name":             tool.Name,
		"display_name":     tool.DisplayName,
		"description":      tool.Description,
		"type":             tool.Type,
		"requires_api_key": tool.RequiresAPIKey,
		"enabled":          tool.Enabled,
		"icon":             tool.Icon,
		"config_schema":    tool.ConfigSchema,
		"endpoint":         tool.Endpoint,
		"created_at":       tool.CreatedAt,
		"updated_at":       tool.UpdatedAt,
	}
}
