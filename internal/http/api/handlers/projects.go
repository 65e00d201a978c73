package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/emergent-labs/emergent-server/internal/activity"
	"github.com/emergent-labs/emergent-server/internal/authz"
	"github.com/emergent-labs/emergent-server/internal/models"
	"github.com/emergent-labs/emergent-server/internal/quota"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// deployDomain is the synthesized deployment URL suffix.
const deployDomain = ".emergent-app.com"

// ProjectHandler serves project lifecycle endpoints.
type ProjectHandler struct {
	db       *gorm.DB
	recorder *activity.Recorder
}

// NewProjectHandler constructs a ProjectHandler.
func NewProjectHandler(db *gorm.DB, recorder *activity.Recorder) *ProjectHandler {
	return &ProjectHandler{db: db, recorder: recorder}
}

// List returns the caller's projects.
func (h *ProjectHandler) List(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var rows []models.Project
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", principal.UserID).
		Order("created_at DESC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list projects failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, projectView(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"projects": out})
}

// createProjectRequest defines the request body for project creation.
type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// Create creates a project in draft state, subject to the plan quota.
func (h *ProjectHandler) Create(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var body createProjectRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}
	projectType := models.ProjectTypeWeb
	if strings.TrimSpace(body.Type) != "" {
		parsed, errParse := models.ParseProjectType(body.Type)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project type"})
			return
		}
		projectType = parsed
	}

	ctx := c.Request.Context()

	var user models.User
	if errFind := h.db.WithContext(ctx).First(&user, principal.UserID).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load user failed"})
		return
	}
	var count int64
	if errCount := h.db.WithContext(ctx).Model(&models.Project{}).
		Where("user_id = ?", principal.UserID).
		Count(&count).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count projects failed"})
		return
	}
	if errQuota := quota.CheckProjectCreation(user.SubscriptionPlan, count); errQuota != nil {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "project limit reached for " + string(user.SubscriptionPlan) + " plan, upgrade to create more projects",
		})
		return
	}

	now := time.Now().UTC()
	project := models.Project{
		UserID:      principal.UserID,
		Name:        name,
		Description: strings.TrimSpace(body.Description),
		Type:        projectType,
		Status:      models.ProjectStatusDraft,
		Settings:    datatypes.JSON([]byte("{}")),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if errCreate := h.db.WithContext(ctx).Create(&project).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create project failed"})
		return
	}

	h.recorder.Record(principal.UserID, "create", "project", map[string]any{
		"projectId":   project.ID,
		"projectName": project.Name,
	})
	c.JSON(http.StatusCreated, projectView(&project))
}

// Get returns one project after an ownership check.
func (h *ProjectHandler) Get(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	project, ok := h.loadAuthorized(c, principal)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, projectView(project))
}

// updateProjectRequest defines the request body for project updates.
type updateProjectRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Status      *string         `json:"status"`
	URL         *string         `json:"url"`
	Settings    json.RawMessage `json:"settings"`
}

// Update patches project fields. Status changes must name a known state.
func (h *ProjectHandler) Update(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	project, ok := h.loadAuthorized(c, principal)
	if !ok {
		return
	}
	var body updateProjectRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	changed := make([]string, 0, 4)
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
			return
		}
		updates["name"] = name
		changed = append(changed, "name")
	}
	if body.Description != nil {
		updates["description"] = strings.TrimSpace(*body.Description)
		changed = append(changed, "description")
	}
	if body.Status != nil {
		status, errParse := models.ParseProjectStatus(*body.Status)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project status"})
			return
		}
		updates["status"] = status
		changed = append(changed, "status")
	}
	if body.URL != nil {
		updates["url"] = strings.TrimSpace(*body.URL)
		changed = append(changed, "url")
	}
	if len(body.Settings) > 0 {
		if !json.Valid(body.Settings) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings"})
			return
		}
		updates["settings"] = datatypes.JSON(body.Settings)
		changed = append(changed, "settings")
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Project{}).
		Where("id = ?", project.ID).
		Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update project failed"})
		return
	}

	h.recorder.Record(principal.UserID, "update", "project", map[string]any{
		"projectId": project.ID,
		"fields":    changed,
	})

	var updated models.Project
	if errFind := h.db.WithContext(c.Request.Context()).First(&updated, project.ID).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reload project failed"})
		return
	}
	c.JSON(http.StatusOK, projectView(&updated))
}

// Delete removes a project. Terminal from any state.
func (h *ProjectHandler) Delete(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	project, ok := h.loadAuthorized(c, principal)
	if !ok {
		return
	}
	if errDelete := h.db.WithContext(c.Request.Context()).Delete(&models.Project{}, project.ID).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete project failed"})
		return
	}
	h.recorder.Record(principal.UserID, "delete", "project", map[string]any{
		"projectId":   project.ID,
		"projectName": project.Name,
	})
	c.JSON(http.StatusOK, gin.H{"message": "project deleted successfully"})
}

// Deploy force-transitions a project to deployed and synthesizes its URL.
func (h *ProjectHandler) Deploy(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	project, ok := h.loadAuthorized(c, principal)
	if !ok {
		return
	}

	url := DeploymentURL(project.Name)
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Project{}).
		Where("id = ?", project.ID).
		Updates(map[string]any{
			"status":     models.ProjectStatusDeployed,
			"url":        url,
			"updated_at": time.Now().UTC(),
		}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "deploy project failed"})
		return
	}

	h.recorder.Record(principal.UserID, "deploy", "project", map[string]any{
		"projectId": project.ID,
		"url":       url,
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "project deployed successfully",
		"url":     url,
		"status":  models.ProjectStatusDeployed,
	})
}

// loadAuthorized loads the project named by the :id param and applies the
// guard. Writes the error response itself when it returns false.
func (h *ProjectHandler) loadAuthorized(c *gin.Context, principal authz.Principal) (*models.Project, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return nil, false
	}
	var project models.Project
	if errFind := h.db.WithContext(c.Request.Context()).First(&project, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	if errAuthorize := authz.Authorize(principal, project.UserID, false); errAuthorize != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized to access this project"})
		return nil, false
	}
	return &project, true
}

// DeploymentURL derives the deployment URL from a project name by
// lowercasing and replacing spaces with hyphens.
func DeploymentURL(name string) string {
	slug := strings.ReplaceAll(strings.ToLower(name), " ", "-")
	return "https://" + slug + deployDomain
}

// projectView renders a project response payload.
func projectView(project *models.Project) gin.H {
	return gin.H{
		"id":          project.ID,
		"user_id":     project.UserID,
		"name":        project.Name,
		"description": project.Description,
		"type":        project.Type,
		"status":      project.Status,
		"url":         project.URL,
		"settings":    project.Settings,
		"created_at":  project.CreatedAt,
		"updated_at":  project.UpdatedAt,
	}
}
