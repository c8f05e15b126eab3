package domain

import "github.com/shopspring/decimal"

// TransferNotification describes one party's view of a transfer,
// handed to the notification sink after commit. Delivery is
// best-effort and never affects the transfer outcome.
type TransferNotification struct {
	Email                 string
	Name                  string
	AccountID             string
	Currency              string
	Amount                decimal.Decimal
	CounterpartyAccountID string
	Direction             EntryType
}
