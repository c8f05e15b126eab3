package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneyledger/moneyledger/internal/domain"
)

func TestUserFromDomain_OmitsPassword(t *testing.T) {
	user := &domain.User{
		ID:             "user-1",
		Email:          "alice@example.com",
		Name:           "Alice",
		HashedPassword: "bcrypt-hash",
		Role:           domain.RoleUser,
		CreatedAt:      time.Now(),
	}

	body, err := json.Marshal(UserFromDomain(user))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if strings.Contains(string(body), "bcrypt-hash") {
		t.Fatalf("password hash leaked into response: %s", body)
	}
}

func TestTransactionFromDomain(t *testing.T) {
	now := time.Now()
	txn := &domain.Transaction{
		ID:            "txn-1",
		FromAccountID: "acc-from",
		ToAccountID:   "acc-to",
		Amount:        decimal.RequireFromString("99.99"),
		Status:        domain.TransactionStatusCompleted,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	got := TransactionFromDomain(txn)

	if got.ID != "txn-1" || got.Status != domain.TransactionStatusCompleted {
		t.Fatalf("unexpected response: %+v", got)
	}
	if !got.Amount.Equal(txn.Amount) {
		t.Fatalf("amount = %s, want %s", got.Amount, txn.Amount)
	}
}

func TestPostingsFromDomain_PreservesOrder(t *testing.T) {
	postings := []*domain.Posting{
		{ID: "p-1", AccountID: "acc-from", Type: domain.EntryTypeDebit, Amount: decimal.NewFromInt(10)},
		{ID: "p-2", AccountID: "acc-to", Type: domain.EntryTypeCredit, Amount: decimal.NewFromInt(10)},
	}

	got := PostingsFromDomain(postings)

	if len(got) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(got))
	}
	if got[0].Type != domain.EntryTypeDebit || got[1].Type != domain.EntryTypeCredit {
		t.Fatalf("posting order not preserved: %+v", got)
	}
}
