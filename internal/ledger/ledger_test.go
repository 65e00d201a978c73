package ledger

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/emergent-labs/emergent-server/internal/db"
	"github.com/emergent-labs/emergent-server/internal/models"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, errOpen := db.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func createUser(t *testing.T, conn *gorm.DB, credits float64) *models.User {
	t.Helper()
	user := models.User{
		Email:   "ledger@example.com",
		Name:    "Ledger User",
		Credits: credits,
	}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	return &user
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDebitChargesAndRecords(t *testing.T) {
	conn := openTestDB(t)
	led := New(conn)
	ctx := context.Background()
	user := createUser(t, conn, 100)

	conversationID := uint64(7)
	if errDebit := led.Debit(ctx, user.ID, MessageCost, "Message sent", &conversationID); errDebit != nil {
		t.Fatalf("Debit: %v", errDebit)
	}

	balance, errBalance := led.Balance(ctx, user.ID)
	if errBalance != nil {
		t.Fatalf("Balance: %v", errBalance)
	}
	if !almostEqual(balance, 99.5) {
		t.Fatalf("balance = %v, want 99.5", balance)
	}

	var reloaded models.User
	if errFind := conn.First(&reloaded, user.ID).Error; errFind != nil {
		t.Fatalf("reload user: %v", errFind)
	}
	if !almostEqual(reloaded.TotalCreditsUsed, MessageCost) {
		t.Fatalf("total_credits_used = %v, want %v", reloaded.TotalCreditsUsed, MessageCost)
	}

	txs, errTxs := led.Transactions(ctx, user.ID)
	if errTxs != nil {
		t.Fatalf("Transactions: %v", errTxs)
	}
	if len(txs) != 1 {
		t.Fatalf("transactions = %d, want 1", len(txs))
	}
	entry := txs[0]
	if !almostEqual(entry.Amount, -MessageCost) {
		t.Fatalf("amount = %v, want %v", entry.Amount, -MessageCost)
	}
	if entry.Type != models.TransactionDebit {
		t.Fatalf("type = %q", entry.Type)
	}
	if entry.ConversationID == nil || *entry.ConversationID != conversationID {
		t.Fatalf("conversation link = %v", entry.ConversationID)
	}
}

func TestDebitDeniedBelowMinimumBalance(t *testing.T) {
	conn := openTestDB(t)
	led := New(conn)
	ctx := context.Background()
	user := createUser(t, conn, 0.05)

	if errAllow := led.Allow(ctx, user.ID); !errors.Is(errAllow, ErrInsufficientCredits) {
		t.Fatalf("Allow = %v, want ErrInsufficientCredits", errAllow)
	}

	errDebit := led.Debit(ctx, user.ID, MessageCost, "Message sent", nil)
	if !errors.Is(errDebit, ErrInsufficientCredits) {
		t.Fatalf("Debit = %v, want ErrInsufficientCredits", errDebit)
	}

	// Denial leaves both the balance and the ledger untouched.
	balance, _ := led.Balance(ctx, user.ID)
	if !almostEqual(balance, 0.05) {
		t.Fatalf("balance = %v, want 0.05", balance)
	}
	txs, errTxs := led.Transactions(ctx, user.ID)
	if errTxs != nil {
		t.Fatalf("Transactions: %v", errTxs)
	}
	if len(txs) != 0 {
		t.Fatalf("transactions = %d, want 0", len(txs))
	}
}

func TestAllowPassesAtExactMinimum(t *testing.T) {
	conn := openTestDB(t)
	led := New(conn)
	user := createUser(t, conn, MinimumBalance)

	if errAllow := led.Allow(context.Background(), user.ID); errAllow != nil {
		t.Fatalf("Allow at exact minimum = %v", errAllow)
	}
}

func TestDebitRejectsNonPositiveAmount(t *testing.T) {
	conn := openTestDB(t)
	led := New(conn)
	user := createUser(t, conn, 100)

	if errDebit := led.Debit(context.Background(), user.ID, 0, "zero", nil); errDebit == nil {
		t.Fatal("zero debit accepted")
	}
	if errDebit := led.Debit(context.Background(), user.ID, -1, "negative", nil); errDebit == nil {
		t.Fatal("negative debit accepted")
	}
}

func TestCreditGrants(t *testing.T) {
	conn := openTestDB(t)
	led := New(conn)
	ctx := context.Background()
	user := createUser(t, conn, 1)

	if errCredit := led.Credit(ctx, user.ID, 25, models.TransactionBonus, "Admin credit grant"); errCredit != nil {
		t.Fatalf("Credit: %v", errCredit)
	}

	balance, _ := led.Balance(ctx, user.ID)
	if !almostEqual(balance, 26) {
		t.Fatalf("balance = %v, want 26", balance)
	}

	txs, _ := led.Transactions(ctx, user.ID)
	if len(txs) != 1 || txs[0].Type != models.TransactionBonus || !almostEqual(txs[0].Amount, 25) {
		t.Fatalf("unexpected ledger entries: %+v", txs)
	}
}

func TestCreditUnknownUser(t *testing.T) {
	conn := openTestDB(t)
	led := New(conn)

	errCredit := led.Credit(context.Background(), 9999, 5, models.TransactionCredit, "grant")
	if !errors.Is(errCredit, gorm.ErrRecordNotFound) {
		t.Fatalf("Credit = %v, want ErrRecordNotFound", errCredit)
	}
}

func TestLedgerReconciles(t *testing.T) {
	conn := openTestDB(t)
	led := New(conn)
	ctx := context.Background()
	user := createUser(t, conn, 100)

	for i := 0; i < 5; i++ {
		if errDebit := led.Debit(ctx, user.ID, MessageCost, "Message sent", nil); errDebit != nil {
			t.Fatalf("debit %d: %v", i, errDebit)
		}
	}
	if errCredit := led.Credit(ctx, user.ID, 10, models.TransactionBonus, "bonus"); errCredit != nil {
		t.Fatalf("credit: %v", errCredit)
	}

	txs, errTxs := led.Transactions(ctx, user.ID)
	if errTxs != nil {
		t.Fatalf("Transactions: %v", errTxs)
	}
	var sum float64
	for _, entry := range txs {
		sum += entry.Amount
	}

	balance, _ := led.Balance(ctx, user.ID)
	if !almostEqual(100+sum, balance) {
		t.Fatalf("ledger does not reconcile: start 100, sum %v, balance %v", sum, balance)
	}
}
