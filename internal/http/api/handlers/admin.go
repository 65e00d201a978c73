package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/emergent-labs/emergent-server/internal/activity"
	dbutil "github.com/emergent-labs/emergent-server/internal/db"
	"github.com/emergent-labs/emergent-server/internal/ledger"
	"github.com/emergent-labs/emergent-server/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// activeUserWindow is the lookback used to count active users in stats.
const activeUserWindow = 30 * 24 * time.Hour

// AdminHandler serves the moderation and platform-stats endpoints.
type AdminHandler struct {
	db       *gorm.DB
	ledger   *ledger.Ledger
	recorder *activity.Recorder
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(db *gorm.DB, led *ledger.Ledger, recorder *activity.Recorder) *AdminHandler {
	return &AdminHandler{db: db, ledger: led, recorder: recorder}
}

// ListUsers returns every account, newest first. An optional ?search=
// filter matches name or email case-insensitively.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context())
	if plan := strings.TrimSpace(c.Query("plan")); plan != "" {
		parsed, errParse := models.ParseSubscriptionPlan(plan)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan"})
			return
		}
		q = q.Where("subscription_plan = ?", parsed)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+search+"%")
		q = q.Where(
			h.db.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "name"), pattern).
				Or(dbutil.CaseInsensitiveLikeExpr(h.db, "email"), pattern),
		)
	}
	var users []models.User
	if errFind := q.
		Order("created_at DESC, id DESC").
		Find(&users).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list users failed"})
		return
	}
	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, userProfileView(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": out, "total": len(out)})
}

// GetUser returns one account's full profile.
func (h *AdminHandler) GetUser(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, userProfileView(user))
}

// updateRoleRequest defines the request body for role changes.
type updateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateUserRole changes an account's role.
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	var body updateRoleRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	role, errRole := models.ParseUserRole(body.Role)
	if errRole != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{"role": role, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update role failed"})
		return
	}

	principal, _ := CurrentPrincipal(c)
	h.recorder.Record(principal.UserID, "update_role", "user", map[string]any{
		"target_user_id": user.ID,
		"role":           role,
	})
	c.JSON(http.StatusOK, gin.H{"message": "role updated successfully", "role": role})
}

// grantCreditsRequest defines the request body for credit grants.
type grantCreditsRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// GrantCredits adds credits to an account as a bonus ledger entry.
func (h *AdminHandler) GrantCredits(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	var body grantCreditsRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}
	description := body.Description
	if description == "" {
		description = "Admin credit grant"
	}

	if errCredit := h.ledger.Credit(c.Request.Context(), user.ID, body.Amount, models.TransactionBonus, description); errCredit != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "grant credits failed"})
		return
	}

	balance, errBalance := h.ledger.Balance(c.Request.Context(), user.ID)
	if errBalance != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query balance failed"})
		return
	}

	principal, _ := CurrentPrincipal(c)
	h.recorder.Record(principal.UserID, "grant_credits", "user", map[string]any{
		"target_user_id": user.ID,
		"amount":         body.Amount,
	})
	c.JSON(http.StatusOK, gin.H{"message": "credits granted successfully", "credits": balance})
}

// DeleteUser removes an account and everything it owns in one transaction.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	principal, _ := CurrentPrincipal(c)
	if principal.UserID == user.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete your own account"})
		return
	}

	errDelete := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var conversationIDs []uint64
		if err := tx.Model(&models.Conversation{}).
			Where("user_id = ?", user.ID).
			Pluck("id", &conversationIDs).Error; err != nil {
			return err
		}
		if len(conversationIDs) > 0 {
			if err := tx.Where("conversation_id IN ?", conversationIDs).
				Delete(&models.Message{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Conversation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Project{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserMCPConfig{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, user.ID).Error
	})
	if errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete user failed"})
		return
	}

	h.recorder.Record(principal.UserID, "delete_user", "user", map[string]any{
		"target_user_id": user.ID,
		"email":          user.Email,
	})
	c.JSON(http.StatusOK, gin.H{"message": "user deleted successfully"})
}

// ListProjects returns every project on the platform, newest first.
func (h *AdminHandler) ListProjects(c *gin.Context) {
	var projects []models.Project
	if errFind := h.db.WithContext(c.Request.Context()).
		Order("created_at DESC, id DESC").
		Find(&projects).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list projects failed"})
		return
	}
	out := make([]gin.H, 0, len(projects))
	for i := range projects {
		out = append(out, projectView(&projects[i]))
	}
	c.JSON(http.StatusOK, gin.H{"projects": out, "total": len(out)})
}

// Stats returns platform-wide counters for the admin dashboard.
func (h *AdminHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	db := h.db.WithContext(ctx)

	var totalUsers int64
	if errCount := db.Model(&models.User{}).Count(&totalUsers).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query stats failed"})
		return
	}

	cutoff := time.Now().UTC().Add(-activeUserWindow)
	var activeUsers int64
	if errCount := db.Model(&models.User{}).
		Where("last_login >= ?", cutoff).
		Count(&activeUsers).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query stats failed"})
		return
	}

	usersByPlan := map[models.SubscriptionPlan]int64{}
	for _, plan := range []models.SubscriptionPlan{models.PlanFree, models.PlanStandard, models.PlanPro} {
		var n int64
		if errCount := db.Model(&models.User{}).
			Where("subscription_plan = ?", plan).
			Count(&n).Error; errCount != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query stats failed"})
			return
		}
		usersByPlan[plan] = n
	}

	var totalProjects int64
	if errCount := db.Model(&models.Project{}).Count(&totalProjects).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query stats failed"})
		return
	}
	projectsByStatus := map[models.ProjectStatus]int64{}
	for _, status := range []models.ProjectStatus{models.ProjectStatusDraft, models.ProjectStatusBuilding, models.ProjectStatusDeployed, models.ProjectStatusFailed} {
		var n int64
		if errCount := db.Model(&models.Project{}).
			Where("status = ?", status).
			Count(&n).Error; errCount != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query stats failed"})
			return
		}
		projectsByStatus[status] = n
	}

	var totalConversations int64
	if errCount := db.Model(&models.Conversation{}).Count(&totalConversations).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query stats failed"})
		return
	}

	recent, errRecent := h.recorder.Recent(ctx, 10)
	if errRecent != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query stats failed"})
		return
	}
	recentViews := make([]gin.H, 0, len(recent))
	for i := range recent {
		recentViews = append(recentViews, activityView(&recent[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"users": gin.H{
			"total":   totalUsers,
			"active":  activeUsers,
			"by_plan": usersByPlan,
		},
		"projects": gin.H{
			"total":     totalProjects,
			"by_status": projectsByStatus,
		},
		"conversations": gin.H{
			"total": totalConversations,
		},
		"recent_activities": recentViews,
	})
}

// ListActivities returns the newest audit records.
func (h *AdminHandler) ListActivities(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, errParse := strconv.Atoi(raw)
		if errParse != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}
	rows, errRecent := h.recorder.Recent(c.Request.Context(), limit)
	if errRecent != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list activities failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, activityView(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"activities": out, "total": len(out)})
}

// loadUser resolves the :id path parameter to an account, writing the
// error response itself on failure.
func (h *AdminHandler) loadUser(c *gin.Context) (*models.User, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return nil, false
	}
	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return &user, true
}

// activityView renders one audit record.
func activityView(entry *models.Activity) gin.H {
	return gin.H{
		"id":        entry.ID,
		"user_id":   entry.UserID,
		"action":    entry.Action,
		"resource":  entry.Resource,
		"metadata":  entry.Metadata,
		"timestamp": entry.Timestamp,
	}
}
