package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the state of a transaction in its lifecycle.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	// TransactionStatusReversed is applied by an external compensating
	// process. Nothing in this service produces it, but replays against
	// a reversed key must be rejected.
	TransactionStatusReversed TransactionStatus = "REVERSED"
)

// validTransitions holds the allowed status transitions.
var validTransitions = map[TransactionStatus][]TransactionStatus{
	TransactionStatusPending:   {TransactionStatusCompleted, TransactionStatusFailed},
	TransactionStatusCompleted: {TransactionStatusReversed},
}

// CanTransitionTo reports whether a transition from s to next is legal.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s TransactionStatus) Terminal() bool {
	return len(validTransitions[s]) == 0
}

// Transaction represents an intent to move money between two accounts.
// A COMPLETED transaction owns exactly two postings: one DEBIT on the
// source account and one CREDIT on the destination, both for Amount.
type Transaction struct {
	ID             string
	FromAccountID  string
	ToAccountID    string
	Amount         decimal.Decimal
	IdempotencyKey string
	Status         TransactionStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate checks the transaction intent before any storage work.
func (t *Transaction) Validate() error {
	if t.FromAccountID == "" || t.ToAccountID == "" {
		return ErrAccountRequired
	}

	if t.FromAccountID == t.ToAccountID {
		return ErrSameAccount
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if t.IdempotencyKey == "" {
		return ErrMissingIdempotencyKey
	}

	return nil
}
