package models

import (
	"time"

	"gorm.io/datatypes"
)

// CreditTransactionType categorizes ledger entries.
type CreditTransactionType string

// CreditTransactionType values.
const (
	// TransactionDebit is a spend; the entry amount is negative.
	TransactionDebit CreditTransactionType = "debit"
	// TransactionCredit is a refund or grant; the amount is positive.
	TransactionCredit CreditTransactionType = "credit"
	// TransactionBonus is a promotional grant.
	TransactionBonus CreditTransactionType = "bonus"
	// TransactionPurchase is a paid top-up.
	TransactionPurchase CreditTransactionType = "purchase"
)

// CreditTransaction is an append-only ledger entry. Never mutated or
// deleted; for any user the sum of amounts reconciles with the balance
// delta since account creation.
type CreditTransaction struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"` // Ledger owner.

	Amount      float64               `gorm:"type:decimal(20,10);not null"` // Signed amount, negative for debits.
	Type        CreditTransactionType `gorm:"type:varchar(16);not null"`    // Entry category.
	Description string                `gorm:"type:text;not null"`           // Free-text reason.

	ConversationID *uint64        `gorm:"index"`                            // Linked conversation, if any.
	Metadata       datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // Free-form metadata.

	Timestamp time.Time `gorm:"not null;autoCreateTime;index"` // Entry time.
}
