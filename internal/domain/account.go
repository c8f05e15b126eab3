package domain

import "time"

// AccountStatus is the lifecycle state of an account. The transaction
// engine only ever reads it; transitions happen through account
// management.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
	AccountStatusClosed    AccountStatus = "CLOSED"
)

// Account is a ledger account. It carries no stored balance: the
// balance is always derived from the account's postings.
type Account struct {
	ID        string
	UserID    string
	Currency  string
	Status    AccountStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether the account can participate in transfers.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// OwnedBy reports whether userID owns the account.
func (a *Account) OwnedBy(userID string) bool {
	return a.UserID == userID
}
