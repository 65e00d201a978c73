// Package api wires the REST surface under the /api prefix. Every mutating
// handler passes the authorization guard before touching storage, and
// spend-triggering handlers pass the credit ledger before persisting
// effects.
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/emergent-labs/emergent-server/internal/activity"
	"github.com/emergent-labs/emergent-server/internal/authz"
	"github.com/emergent-labs/emergent-server/internal/config"
	"github.com/emergent-labs/emergent-server/internal/http/api/handlers"
	"github.com/emergent-labs/emergent-server/internal/ledger"
	"github.com/emergent-labs/emergent-server/internal/models"
	"github.com/emergent-labs/emergent-server/internal/security"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterRoutes registers all API routes, middleware, and handlers.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, led *ledger.Ledger, recorder *activity.Recorder) {
	if r == nil || db == nil {
		return
	}

	apiGroup := r.Group("/api")

	healthHandler := handlers.NewHealthHandler(db)
	apiGroup.GET("/", healthHandler.Root)
	apiGroup.GET("/health", healthHandler.Health)

	authHandler := handlers.NewAuthHandler(db, jwtCfg)
	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", authMiddleware(db, jwtCfg), authHandler.Me)

	authed := apiGroup.Group("")
	authed.Use(authMiddleware(db, jwtCfg))

	projectHandler := handlers.NewProjectHandler(db, recorder)
	authed.GET("/projects", projectHandler.List)
	authed.POST("/projects", projectHandler.Create)
	authed.GET("/projects/:id", projectHandler.Get)
	authed.PUT("/projects/:id", projectHandler.Update)
	authed.DELETE("/projects/:id", projectHandler.Delete)
	authed.POST("/projects/:id/deploy", projectHandler.Deploy)

	conversationHandler := handlers.NewConversationHandler(db, led, recorder)
	authed.GET("/conversations", conversationHandler.List)
	authed.POST("/conversations", conversationHandler.Create)
	authed.GET("/conversations/:id", conversationHandler.Get)
	authed.GET("/conversations/:id/messages", conversationHandler.Messages)
	authed.PUT("/conversations/:id/archive", conversationHandler.Archive)
	authed.DELETE("/conversations/:id", conversationHandler.Delete)
	authed.POST("/conversations/messages", conversationHandler.SendMessage)

	creditHandler := handlers.NewCreditHandler(db, led)
	authed.GET("/credits", creditHandler.Summary)
	authed.GET("/credits/transactions", creditHandler.Transactions)

	modelHandler := handlers.NewAIModelHandler(db)
	authed.GET("/models", modelHandler.ListEnabled)

	mcpHandler := handlers.NewMCPToolHandler(db)
	authed.GET("/mcp-tools", mcpHandler.ListEnabled)
	authed.GET("/mcp-tools/user-config", mcpHandler.ListUserConfigs)
	authed.POST("/mcp-tools/user-config", mcpHandler.SaveUserConfig)

	adminAuthed := apiGroup.Group("")
	adminAuthed.Use(authMiddleware(db, jwtCfg))
	adminAuthed.Use(adminMiddleware())

	adminAuthed.GET("/models/all", modelHandler.ListAll)
	adminAuthed.POST("/models", modelHandler.Create)
	adminAuthed.PUT("/models/:id", modelHandler.Update)
	adminAuthed.DELETE("/models/:id", modelHandler.Delete)

	adminAuthed.GET("/mcp-tools/all", mcpHandler.ListAll)
	adminAuthed.POST("/mcp-tools", mcpHandler.Create)
	adminAuthed.PUT("/mcp-tools/:id/toggle", mcpHandler.Toggle)
	adminAuthed.DELETE("/mcp-tools/:id", mcpHandler.Delete)

	adminHandler := handlers.NewAdminHandler(db, led, recorder)
	adminGroup := adminAuthed.Group("/admin")
	adminGroup.GET("/users", adminHandler.ListUsers)
	adminGroup.GET("/users/:id", adminHandler.GetUser)
	adminGroup.PUT("/users/:id/role", adminHandler.UpdateUserRole)
	adminGroup.POST("/users/:id/credits", adminHandler.GrantCredits)
	adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)
	adminGroup.GET("/projects", adminHandler.ListProjects)
	adminGroup.GET("/stats", adminHandler.Stats)
	adminGroup.GET("/activities", adminHandler.ListActivities)
}

// authMiddleware validates bearer tokens and loads the principal.
func authMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errParse := security.ParseUserToken(jwtCfg.Secret, token)
		if errParse != nil {
			if errors.Is(errParse, security.ErrExpiredToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		userID, errID := claims.UserID()
		if errID != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, userID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		c.Set(handlers.PrincipalKey, authz.Principal{
			UserID: user.ID,
			Email:  user.Email,
			Role:   user.Role,
		})
		c.Next()
	}
}

// adminMiddleware requires the admin role on the loaded principal.
func adminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := handlers.CurrentPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		if errAuthorize := authz.Authorize(principal, 0, true); errAuthorize != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
