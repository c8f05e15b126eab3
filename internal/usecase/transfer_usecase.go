package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/moneyledger/moneyledger/internal/domain"
)

// TransferUseCase coordinates transfer submissions: validation,
// idempotency, balance derivation and the atomic posting group.
type TransferUseCase struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	postingRepo     PostingRepository
	outboxRepo      OutboxRepository
	idGen           IDGenerator
	retrier         Retrier
	cache           Cache
	notifier        Notifier
	logger          zerolog.Logger
}

// TransferUseCaseConfig holds dependencies for TransferUseCase.
// Retrier, Cache and Notifier are optional.
type TransferUseCaseConfig struct {
	TxManager       TransactionManager
	AccountRepo     AccountRepository
	TransactionRepo TransactionRepository
	PostingRepo     PostingRepository
	OutboxRepo      OutboxRepository
	IDGen           IDGenerator
	Retrier         Retrier
	Cache           Cache
	Notifier        Notifier
	Logger          zerolog.Logger
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(cfg TransferUseCaseConfig) *TransferUseCase {
	return &TransferUseCase{
		txManager:       cfg.TxManager,
		accountRepo:     cfg.AccountRepo,
		transactionRepo: cfg.TransactionRepo,
		postingRepo:     cfg.PostingRepo,
		outboxRepo:      cfg.OutboxRepo,
		idGen:           cfg.IDGen,
		retrier:         cfg.Retrier,
		cache:           cfg.Cache,
		notifier:        cfg.Notifier,
		logger:          cfg.Logger,
	}
}

// SubmitTransferInput represents a transfer submission.
type SubmitTransferInput struct {
	FromAccountID    string
	ToAccountID      string
	Amount           decimal.Decimal
	IdempotencyKey   string
	RequestingUserID string
}

// FundAccountInput represents a system-funding submission. The source
// account is implicit: the system account owned by the requester.
type FundAccountInput struct {
	ToAccountID      string
	Amount           decimal.Decimal
	IdempotencyKey   string
	RequestingUserID string
}

// TransferResult is the outcome of a submission. Replayed is true when
// the idempotency key matched an already-completed transaction.
type TransferResult struct {
	Transaction *domain.Transaction
	Replayed    bool
}

// SubmitTransfer validates a transfer request, derives the sender's
// balance from the ledger and atomically posts the debit/credit pair.
// The call always returns a terminal outcome: either the committed
// COMPLETED transaction or an error after the group was rolled back.
func (uc *TransferUseCase) SubmitTransfer(ctx context.Context, input SubmitTransferInput) (*TransferResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if input.IdempotencyKey == "" {
		return nil, domain.ErrMissingIdempotencyKey
	}

	if input.FromAccountID == "" || input.ToAccountID == "" {
		return nil, domain.ErrAccountRequired
	}

	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSameAccount
	}

	from, err := uc.accountRepo.GetByID(ctx, input.FromAccountID)
	if err != nil {
		return nil, err
	}

	to, err := uc.accountRepo.GetByID(ctx, input.ToAccountID)
	if err != nil {
		return nil, err
	}

	if !from.OwnedBy(input.RequestingUserID) {
		return nil, domain.ErrNotAccountOwner
	}

	if existing, err := uc.resolveIdempotencyKey(ctx, input.IdempotencyKey); existing != nil || err != nil {
		if err != nil {
			return nil, err
		}
		return &TransferResult{Transaction: existing, Replayed: true}, nil
	}

	if !from.IsActive() || !to.IsActive() {
		return nil, domain.ErrAccountInactive
	}

	if from.Currency != to.Currency {
		return nil, domain.ErrCurrencyMismatch
	}

	return uc.post(ctx, postingRequest{
		fromAccountID:  from.ID,
		toAccountID:    to.ID,
		amount:         input.Amount,
		idempotencyKey: input.IdempotencyKey,
		checkBalance:   true,
	})
}

// FundAccount credits new money into the system from the requester's
// system account. It skips the balance-sufficiency precondition but
// follows the same atomic posting protocol and idempotency rules.
func (uc *TransferUseCase) FundAccount(ctx context.Context, input FundAccountInput) (*TransferResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if input.IdempotencyKey == "" {
		return nil, domain.ErrMissingIdempotencyKey
	}

	if input.ToAccountID == "" {
		return nil, domain.ErrAccountRequired
	}

	to, err := uc.accountRepo.GetByID(ctx, input.ToAccountID)
	if err != nil {
		return nil, err
	}

	source, err := uc.accountRepo.GetSystemAccount(ctx, input.RequestingUserID)
	if err != nil {
		return nil, err
	}

	if source.ID == to.ID {
		return nil, domain.ErrSameAccount
	}

	if existing, err := uc.resolveIdempotencyKey(ctx, input.IdempotencyKey); existing != nil || err != nil {
		if err != nil {
			return nil, err
		}
		return &TransferResult{Transaction: existing, Replayed: true}, nil
	}

	if !to.IsActive() {
		return nil, domain.ErrAccountInactive
	}

	if source.Currency != to.Currency {
		return nil, domain.ErrCurrencyMismatch
	}

	return uc.post(ctx, postingRequest{
		fromAccountID:  source.ID,
		toAccountID:    to.ID,
		amount:         input.Amount,
		idempotencyKey: input.IdempotencyKey,
		checkBalance:   false,
	})
}

// resolveIdempotencyKey applies the lookup-then-branch policy. It
// returns the existing transaction for a completed key, an error for
// in-flight or terminal keys, and (nil, nil) for an unseen key.
func (uc *TransferUseCase) resolveIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	existing, err := uc.transactionRepo.GetByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return nil, nil
		}
		return nil, err
	}

	switch existing.Status {
	case domain.TransactionStatusCompleted:
		return existing, nil
	case domain.TransactionStatusPending:
		return nil, domain.ErrDuplicateInFlight
	default: // FAILED, REVERSED
		return nil, domain.ErrTerminalDuplicate
	}
}

type postingRequest struct {
	fromAccountID  string
	toAccountID    string
	amount         decimal.Decimal
	idempotencyKey string
	checkBalance   bool
}

// post runs the atomic posting group, retrying on transient storage
// conflicts. On any non-precondition failure the group is rolled back
// and the transaction is marked FAILED with a best-effort side write.
func (uc *TransferUseCase) post(ctx context.Context, req postingRequest) (*TransferResult, error) {
	now := time.Now().UTC()

	txn := &domain.Transaction{
		ID:             uc.idGen.Generate(),
		FromAccountID:  req.fromAccountID,
		ToAccountID:    req.toAccountID,
		Amount:         req.amount,
		IdempotencyKey: req.idempotencyKey,
		Status:         domain.TransactionStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	err := uc.retry(ctx, func() error {
		return uc.postOnce(ctx, txn, req.checkBalance)
	})
	if err != nil {
		if isPrecondition(err) {
			// No writes happened; nothing to mark.
			return nil, err
		}

		uc.markFailed(ctx, txn)

		uc.logger.Error().Err(err).
			Str("transaction_id", txn.ID).
			Str("from_account_id", txn.FromAccountID).
			Str("to_account_id", txn.ToAccountID).
			Msg("posting group aborted")

		return nil, domain.ErrPostingFailed
	}

	uc.invalidateBalances(ctx, txn.FromAccountID, txn.ToAccountID)

	if uc.notifier != nil {
		uc.notifier.NotifyTransferCompleted(txn)
	}

	return &TransferResult{Transaction: txn}, nil
}

// postOnce executes one attempt of the posting group inside a single
// database transaction. Both account rows are locked in sorted ID
// order before the balance is derived, so concurrent debits of the
// same account serialize and can never drive the balance negative.
func (uc *TransferUseCase) postOnce(ctx context.Context, txn *domain.Transaction, checkBalance bool) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ids := []string{txn.FromAccountID, txn.ToAccountID}
	sort.Strings(ids)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return err
	}

	if len(accounts) != len(ids) {
		return domain.ErrAccountNotFound
	}

	// Status may have changed between the gate read and the lock.
	for _, acc := range accounts {
		if !acc.IsActive() {
			return domain.ErrAccountInactive
		}
	}

	if checkBalance {
		balance, err := uc.postingRepo.BalanceOfTx(ctx, tx, txn.FromAccountID)
		if err != nil {
			return err
		}

		if balance.LessThan(txn.Amount) {
			return domain.ErrInsufficientFunds
		}
	}

	if err := uc.transactionRepo.Create(ctx, tx, txn); err != nil {
		return err
	}

	now := time.Now().UTC()

	debit := &domain.Posting{
		ID:            uc.idGen.Generate(),
		AccountID:     txn.FromAccountID,
		TransactionID: txn.ID,
		Type:          domain.EntryTypeDebit,
		Amount:        txn.Amount,
		CreatedAt:     now,
	}
	if err := uc.postingRepo.Create(ctx, tx, debit); err != nil {
		return err
	}

	credit := &domain.Posting{
		ID:            uc.idGen.Generate(),
		AccountID:     txn.ToAccountID,
		TransactionID: txn.ID,
		Type:          domain.EntryTypeCredit,
		Amount:        txn.Amount,
		CreatedAt:     now,
	}
	if err := uc.postingRepo.Create(ctx, tx, credit); err != nil {
		return err
	}

	if err := uc.transactionRepo.UpdateStatus(ctx, tx, txn.ID, domain.TransactionStatusCompleted, now); err != nil {
		return err
	}

	if uc.outboxRepo != nil {
		completed := *txn
		completed.Status = domain.TransactionStatusCompleted
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   txn.ID,
			AggregateType: domain.AggregateTypeTransaction,
			EventType:     domain.EventTypeTransactionCompleted,
			Payload:       domain.NewTransactionEvent(&completed, now).AsPayload(),
			CreatedAt:     now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	txn.Status = domain.TransactionStatusCompleted
	txn.UpdatedAt = now

	return nil
}

// markFailed records the FAILED marker after rollback. The write is
// best-effort: its own failure leaves an unresolved transaction that
// is surfaced for out-of-band reconciliation, never to the caller.
func (uc *TransferUseCase) markFailed(ctx context.Context, txn *domain.Transaction) {
	txn.Status = domain.TransactionStatusFailed
	txn.UpdatedAt = time.Now().UTC()

	if err := uc.transactionRepo.RecordFailure(ctx, txn); err != nil {
		uc.logger.Error().Err(err).
			Str("transaction_id", txn.ID).
			Str("idempotency_key", txn.IdempotencyKey).
			Msg("failed to record FAILED status; transaction needs reconciliation")
		return
	}

	uc.emitFailureEvent(ctx, txn)

	if uc.notifier != nil {
		uc.notifier.NotifyTransferFailed(txn)
	}
}

// emitFailureEvent writes a transaction.failed outbox event in its own
// short transaction. Like the FAILED marker itself the write is
// best-effort: consumers that miss it can still observe the terminal
// status through the transaction record.
func (uc *TransferUseCase) emitFailureEvent(ctx context.Context, txn *domain.Transaction) {
	if uc.outboxRepo == nil {
		return
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		uc.logger.Error().Err(err).
			Str("transaction_id", txn.ID).
			Msg("failed to open transaction for failure event")
		return
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   txn.ID,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     domain.EventTypeTransactionFailed,
		Payload:       domain.NewTransactionEvent(txn, now).AsPayload(),
		CreatedAt:     now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		uc.logger.Error().Err(err).
			Str("transaction_id", txn.ID).
			Msg("failed to record failure event")
		return
	}
	if err := tx.Commit(ctx); err != nil {
		uc.logger.Error().Err(err).
			Str("transaction_id", txn.ID).
			Msg("failed to commit failure event")
	}
}

func (uc *TransferUseCase) retry(ctx context.Context, operation func() error) error {
	if uc.retrier == nil {
		return operation()
	}
	return uc.retrier.Retry(ctx, operation)
}

func (uc *TransferUseCase) invalidateBalances(ctx context.Context, accountIDs ...string) {
	if uc.cache == nil {
		return
	}

	for _, id := range accountIDs {
		if err := uc.cache.Delete(ctx, balanceCacheKey(id)); err != nil {
			uc.logger.Warn().Err(err).Str("account_id", id).Msg("balance cache invalidation failed")
		}
	}
}

// isPrecondition reports whether the error is a precondition failure
// that produced no writes, as opposed to a posting failure.
func isPrecondition(err error) bool {
	for _, sentinel := range []error{
		domain.ErrAccountNotFound,
		domain.ErrAccountInactive,
		domain.ErrInsufficientFunds,
		domain.ErrDuplicateInFlight,
		domain.ErrSameAccount,
		domain.ErrInvalidAmount,
		domain.ErrCurrencyMismatch,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// GetTransaction retrieves a transaction by ID.
func (uc *TransferUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.transactionRepo.GetByID(ctx, id)
}

// ListTransactionsByAccountInput represents input for listing
// transactions touching an account.
type ListTransactionsByAccountInput struct {
	AccountID        string
	RequestingUserID string
	Limit            int
	Offset           int
}

// ListTransactionsByAccount lists transactions for an owned account.
func (uc *TransferUseCase) ListTransactionsByAccount(ctx context.Context, input ListTransactionsByAccountInput) ([]*domain.Transaction, error) {
	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if !account.OwnedBy(input.RequestingUserID) {
		return nil, domain.ErrNotAccountOwner
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.transactionRepo.ListByAccount(ctx, input.AccountID, limit, offset)
}
