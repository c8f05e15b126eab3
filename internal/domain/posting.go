package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType is the side of a posting.
type EntryType string

const (
	EntryTypeDebit  EntryType = "DEBIT"
	EntryTypeCredit EntryType = "CREDIT"
)

// Posting is a single immutable ledger entry. Postings are append-only:
// once written they are never updated or deleted, and an account's
// balance is the fold over its postings.
type Posting struct {
	ID            string
	AccountID     string
	TransactionID string
	Type          EntryType
	Amount        decimal.Decimal
	CreatedAt     time.Time
}

// Signed returns the posting's effect on the account balance: positive
// for credits, negative for debits.
func (p *Posting) Signed() decimal.Decimal {
	if p.Type == EntryTypeDebit {
		return p.Amount.Neg()
	}
	return p.Amount
}

// Validate checks posting invariants before it is written.
func (p *Posting) Validate() error {
	if p.Type != EntryTypeDebit && p.Type != EntryTypeCredit {
		return ErrInvalidEntryType
	}

	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if p.AccountID == "" || p.TransactionID == "" {
		return ErrAccountRequired
	}

	return nil
}

// SumPostings nets a set of postings. For the posting pair of a
// completed transaction the result is zero.
func SumPostings(postings []*Posting) decimal.Decimal {
	total := decimal.Zero
	for _, p := range postings {
		total = total.Add(p.Signed())
	}
	return total
}
