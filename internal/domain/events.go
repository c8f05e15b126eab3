package domain

import "time"

// Event types
const (
	EventTypeTransactionCompleted = "transaction.completed"
	EventTypeTransactionFailed    = "transaction.failed"
)

// Aggregate types
const (
	AggregateTypeTransaction = "transaction"
)

// OutboxEvent is an event written in the same database transaction as
// the state change it describes, and published asynchronously.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// TransactionEvent is the payload of transaction lifecycle events.
type TransactionEvent struct {
	TransactionID string `json:"transaction_id"`
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
	OccurredAt    string `json:"occurred_at"`
}

// NewTransactionEvent builds the event payload for a transaction's
// current state.
func NewTransactionEvent(txn *Transaction, occurredAt time.Time) TransactionEvent {
	return TransactionEvent{
		TransactionID: txn.ID,
		FromAccountID: txn.FromAccountID,
		ToAccountID:   txn.ToAccountID,
		Amount:        txn.Amount.String(),
		Status:        string(txn.Status),
		OccurredAt:    occurredAt.Format(time.RFC3339Nano),
	}
}

// AsPayload converts the event to the outbox payload shape.
func (e TransactionEvent) AsPayload() map[string]any {
	return map[string]any{
		"transaction_id":  e.TransactionID,
		"from_account_id": e.FromAccountID,
		"to_account_id":   e.ToAccountID,
		"amount":          e.Amount,
		"status":          e.Status,
		"occurred_at":     e.OccurredAt,
	}
}
