package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneyledger/moneyledger/internal/domain"
)

// AccountRepository defines data access for accounts. The transaction
// engine only reads account state; status transitions happen through
// account management.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// GetByIDsForUpdate locks the account rows for the duration of the
	// enclosing transaction. IDs must be passed in sorted order to
	// avoid lock cycles between concurrent transfers.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	// GetSystemAccount returns the account owned by the given system
	// user, the implicit source of initial-funds transactions.
	GetSystemAccount(ctx context.Context, userID string) (*domain.Account, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Account, error)
}

// TransactionRepository defines data access for transactions.
type TransactionRepository interface {
	// Create inserts the transaction row. A unique violation on the
	// idempotency key is reported as domain.ErrDuplicateInFlight.
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.TransactionStatus, updatedAt time.Time) error
	// RecordFailure writes the FAILED marker outside any transaction,
	// after the posting group has been rolled back. It must not clobber
	// a row another submission committed with the same key.
	RecordFailure(ctx context.Context, txn *domain.Transaction) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
}

// PostingRepository defines data access for ledger postings. Postings
// are append-only; there are no update or delete operations.
type PostingRepository interface {
	Create(ctx context.Context, tx Transaction, posting *domain.Posting) error
	GetByTransaction(ctx context.Context, transactionID string) ([]*domain.Posting, error)
	GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Posting, error)
	// BalanceOf derives the account balance by summing its postings.
	// This is the single authority for balances.
	BalanceOf(ctx context.Context, accountID string) (decimal.Decimal, error)
	// BalanceOfTx derives the balance inside a transaction, after the
	// account row has been locked.
	BalanceOfTx(ctx context.Context, tx Transaction, accountID string) (decimal.Decimal, error)
	// SumByType returns the ledger-wide debit and credit totals.
	SumByType(ctx context.Context) (debits, credits decimal.Decimal, err error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage for HTTP response
// replay. It is a fast path only; the database uniqueness constraint
// on the transaction's idempotency key is the authority.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so a failed submission can retry
	// through the fast path instead of waiting out the TTL.
	Release(ctx context.Context, key string) error
}

// Notifier hands completed transfers to the notification sink. The
// call must never block and implementations swallow delivery failures.
type Notifier interface {
	NotifyTransferCompleted(txn *domain.Transaction)
	NotifyTransferFailed(txn *domain.Transaction)
}
