package handlers

import (
	"net/http"

	"github.com/emergent-labs/emergent-server/internal/ledger"
	"github.com/emergent-labs/emergent-server/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreditHandler serves the ledger's read side for the current user.
type CreditHandler struct {
	db     *gorm.DB
	ledger *ledger.Ledger
}

// NewCreditHandler constructs a CreditHandler.
func NewCreditHandler(db *gorm.DB, led *ledger.Ledger) *CreditHandler {
	return &CreditHandler{db: db, ledger: led}
}

// Summary returns the caller's balance and usage totals.
func (h *CreditHandler) Summary(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).
		Select("credits", "total_credits_used").
		First(&user, principal.UserID).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load balance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":            user.Credits,
		"total_credits_used": user.TotalCreditsUsed,
	})
}

// Transactions returns the caller's ledger entries, newest first.
func (h *CreditHandler) Transactions(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	rows, errList := h.ledger.Transactions(c.Request.Context(), principal.UserID)
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list transactions failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":              row.ID,
			"amount":          row.Amount,
			"type":            row.Type,
			"description":     row.Description,
			"conversation_id": row.ConversationID,
			"timestamp":       row.Timestamp,
		})
	}
	c.JSON(http.StatusOK, gin.H{"transactions": out})
}
