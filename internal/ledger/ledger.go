// Package ledger tracks per-user credit balances with an append-only
// transaction history.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emergent-labs/emergent-server/internal/models"
	"gorm.io/gorm"
)

// Billing constants. Fixed placeholder values until usage-based metering
// replaces them.
const (
	// MinimumBalance is the balance gate applied before any spend-triggering
	// action, independent of the amount charged.
	MinimumBalance = 0.1
	// MessageCost is the flat debit per assistant interaction.
	MessageCost = 0.5
)

// ErrInsufficientCredits denies a spend when the balance is below the gate.
var ErrInsufficientCredits = errors.New("ledger: insufficient credits")

// Ledger applies debits and credits against user balances.
type Ledger struct {
	db *gorm.DB
}

// New constructs a Ledger.
func New(db *gorm.DB) *Ledger { return &Ledger{db: db} }

// Allow checks the minimum-balance gate for a spend-triggering action.
// The check is a plain read ahead of the atomic decrement in Debit, so two
// concurrent spends can both pass it; this is an accepted best-effort
// guarantee, not a hard one.
func (l *Ledger) Allow(ctx context.Context, userID uint64) error {
	balance, errBalance := l.Balance(ctx, userID)
	if errBalance != nil {
		return errBalance
	}
	if balance < MinimumBalance {
		return ErrInsufficientCredits
	}
	return nil
}

// Debit charges amount against the user's balance and appends a ledger
// entry. The balance decrement, spent-counter increment, timestamp bump,
// and transaction row commit as one unit; on denial nothing is mutated.
func (l *Ledger) Debit(ctx context.Context, userID uint64, amount float64, description string, conversationID *uint64) error {
	if amount <= 0 {
		return fmt.Errorf("ledger: debit amount must be positive, got %v", amount)
	}
	if errAllow := l.Allow(ctx, userID); errAllow != nil {
		return errAllow
	}

	now := time.Now().UTC()
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]any{
				"credits":            gorm.Expr("credits - ?", amount),
				"total_credits_used": gorm.Expr("total_credits_used + ?", amount),
				"updated_at":         now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		entry := models.CreditTransaction{
			UserID:         userID,
			Amount:         -amount,
			Type:           models.TransactionDebit,
			Description:    description,
			ConversationID: conversationID,
			Timestamp:      now,
		}
		return tx.Create(&entry).Error
	})
}

// Credit grants amount to the user's balance and appends a ledger entry.
// Always succeeds for a known user; there is no upper bound.
func (l *Ledger) Credit(ctx context.Context, userID uint64, amount float64, txType models.CreditTransactionType, description string) error {
	if amount <= 0 {
		return fmt.Errorf("ledger: credit amount must be positive, got %v", amount)
	}
	if txType == "" || txType == models.TransactionDebit {
		txType = models.TransactionCredit
	}

	now := time.Now().UTC()
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]any{
				"credits":    gorm.Expr("credits + ?", amount),
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		entry := models.CreditTransaction{
			UserID:      userID,
			Amount:      amount,
			Type:        txType,
			Description: description,
			Timestamp:   now,
		}
		return tx.Create(&entry).Error
	})
}

// Balance returns the user's current credit balance.
func (l *Ledger) Balance(ctx context.Context, userID uint64) (float64, error) {
	var user models.User
	if errFind := l.db.WithContext(ctx).Select("credits").First(&user, userID).Error; errFind != nil {
		return 0, errFind
	}
	return user.Credits, nil
}

// Transactions returns the user's ledger entries, most recent first.
func (l *Ledger) Transactions(ctx context.Context, userID uint64) ([]models.CreditTransaction, error) {
	var rows []models.CreditTransaction
	if errFind := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC, id DESC").
		Find(&rows).Error; errFind != nil {
		return nil, errFind
	}
	return rows, nil
}
