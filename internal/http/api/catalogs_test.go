package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/emergent-labs/emergent-server/internal/models"
	"github.com/emergent-labs/emergent-server/internal/seed"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestModelCatalog(t *testing.T) {
	s, adminToken := newAdminServer(t)
	userToken, _ := s.register("viewer@example.com", "Viewer", "password1")

	rec := s.do(http.MethodPost, "/api/models", adminToken, gin.H{
		"name":                   "claude-4.5-sonnet",
		"displayName":            "Claude 4.5 Sonnet",
		"provider":               "anthropic",
		"maxTokens":              200000,
		"pricePerThousandTokens": 0.003,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	modelID := uint64(decode(t, rec)["id"].(float64))

	// Duplicate names are rejected.
	rec = s.do(http.MethodPost, "/api/models", adminToken, gin.H{
		"name":        "claude-4.5-sonnet",
		"displayName": "Duplicate",
		"provider":    "anthropic",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Users see enabled models only.
	rec = s.do(http.MethodGet, "/api/models", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode(t, rec)["models"].([]any), 1)

	rec = s.do(http.MethodPut, fmt.Sprintf("/api/models/%d", modelID), adminToken, gin.H{"enabled": false})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/models", userToken, nil)
	require.Empty(t, decode(t, rec)["models"])

	// Admins still see it in the full catalog.
	rec = s.do(http.MethodGet, "/api/models/all", adminToken, nil)
	require.Len(t, decode(t, rec)["models"].([]any), 1)

	// Catalog writes are admin-only.
	rec = s.do(http.MethodPost, "/api/models", userToken, gin.H{
		"name":        "rogue-model",
		"displayName": "Rogue",
		"provider":    "nobody",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodDelete, fmt.Sprintf("/api/models/%d", modelID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/api/models/all", adminToken, nil)
	require.Empty(t, decode(t, rec)["models"])
}

func TestMCPToolCatalog(t *testing.T) {
	s, adminToken := newAdminServer(t)
	userToken, _ := s.register("tooluser@example.com", "Tool User", "password1")

	rec := s.do(http.MethodPost, "/api/mcp-tools", adminToken, gin.H{
		"name":           "notion",
		"displayName":    "Notion MCP",
		"description":    "Read and write pages in Notion workspace",
		"type":           "notion",
		"requiresApiKey": true,
		"icon":           "📝",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	toolID := uint64(decode(t, rec)["id"].(float64))

	rec = s.do(http.MethodGet, "/api/mcp-tools", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tools := decode(t, rec)["tools"].([]any)
	require.Len(t, tools, 1)
	require.Equal(t, "notion", tools[0].(map[string]any)["name"])

	rec = s.do(http.MethodPut, fmt.Sprintf("/api/mcp-tools/%d/toggle", toolID), adminToken, gin.H{"enabled": false})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/mcp-tools", userToken, nil)
	require.Empty(t, decode(t, rec)["tools"])
	rec = s.do(http.MethodGet, "/api/mcp-tools/all", adminToken, nil)
	require.Len(t, decode(t, rec)["tools"].([]any), 1)

	rec = s.do(http.MethodPut, "/api/mcp-tools/99999/toggle", adminToken, gin.H{"enabled": true})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodDelete, fmt.Sprintf("/api/mcp-tools/%d", toolID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUserMCPConfigUpsert(t *testing.T) {
	s, adminToken := newAdminServer(t)
	userToken, userID := s.register("configurer@example.com", "Configurer", "password1")

	rec := s.do(http.MethodPost, "/api/mcp-tools", adminToken, gin.H{
		"name":           "supabase",
		"displayName":    "Supabase MCP",
		"description":    "Connect to Supabase for database operations",
		"type":           "supabase",
		"requiresApiKey": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	toolID := uint64(decode(t, rec)["id"].(float64))

	rec = s.do(http.MethodPost, "/api/mcp-tools/user-config", userToken, gin.H{
		"mcpToolId": toolID,
		"apiKey":    "first-key",
		"config":    gin.H{"projectUrl": "https://one.supabase.co"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Saving again for the same tool updates in place.
	rec = s.do(http.MethodPost, "/api/mcp-tools/user-config", userToken, gin.H{
		"mcpToolId": toolID,
		"apiKey":    "second-key",
		"config":    gin.H{"projectUrl": "https://two.supabase.co"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var configCount int64
	s.db.Model(&models.UserMCPConfig{}).Where("user_id = ?", userID).Count(&configCount)
	require.Equal(t, int64(1), configCount)

	rec = s.do(http.MethodGet, "/api/mcp-tools/user-config", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	configs := decode(t, rec)["configs"].([]any)
	require.Len(t, configs, 1)
	require.Equal(t, "second-key", configs[0].(map[string]any)["api_key"])

	// Unknown tools are rejected.
	rec = s.do(http.MethodPost, "/api/mcp-tools/user-config", userToken, gin.H{
		"mcpToolId": 99999,
		"apiKey":    "key",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSeededCatalogsServeThroughAPI(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, seed.AIModels(context.Background(), s.db))
	require.NoError(t, seed.MCPTools(context.Background(), s.db))
	token, _ := s.register("fresh@example.com", "Fresh", "password1")

	rec := s.do(http.MethodGet, "/api/models", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode(t, rec)["models"].([]any), 6)

	rec = s.do(http.MethodGet, "/api/mcp-tools", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode(t, rec)["tools"].([]any), 4)
}
