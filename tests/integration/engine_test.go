package integration

import (
	"fmt"
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/moneyledger/moneyledger/internal/adapter/repository/postgres"
	"github.com/moneyledger/moneyledger/internal/usecase"
)

var keyCounter atomic.Int64

// uniqueKey returns a process-unique idempotency key.
func uniqueKey(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, keyCounter.Add(1))
}

type engine struct {
	transferUC  *usecase.TransferUseCase
	ledgerUC    *usecase.LedgerUseCase
	accountRepo *postgres.AccountRepository
	txnRepo     *postgres.TransactionRepository
	postingRepo *postgres.PostingRepository
}

// newEngine wires the transaction engine against a live database, with
// outbox, cache and notifications disabled.
func newEngine(pool *pgxpool.Pool) *engine {
	accountRepo := postgres.NewAccountRepository(pool)
	txnRepo := postgres.NewTransactionRepository(pool)
	postingRepo := postgres.NewPostingRepository(pool)

	transferUC := usecase.NewTransferUseCase(usecase.TransferUseCaseConfig{
		TxManager:       postgres.NewTxManager(pool),
		AccountRepo:     accountRepo,
		TransactionRepo: txnRepo,
		PostingRepo:     postingRepo,
		OutboxRepo:      postgres.NewNullOutboxRepository(),
		IDGen:           postgres.NewULIDGenerator(),
		Retrier:         postgres.NewRetrier(zerolog.Nop()),
		Logger:          zerolog.Nop(),
	})

	ledgerUC := usecase.NewLedgerUseCase(postingRepo, accountRepo, nil, zerolog.Nop())

	return &engine{
		transferUC:  transferUC,
		ledgerUC:    ledgerUC,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		postingRepo: postingRepo,
	}
}
