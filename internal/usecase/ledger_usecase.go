package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/moneyledger/moneyledger/internal/domain"
)

// LedgerUseCase handles read-side ledger operations: derived balances,
// posting history and ledger-wide consistency.
type LedgerUseCase struct {
	postingRepo PostingRepository
	accountRepo AccountRepository
	cache       Cache
	logger      zerolog.Logger
}

// NewLedgerUseCase creates a new LedgerUseCase. Cache is optional.
func NewLedgerUseCase(postingRepo PostingRepository, accountRepo AccountRepository, cache Cache, logger zerolog.Logger) *LedgerUseCase {
	return &LedgerUseCase{
		postingRepo: postingRepo,
		accountRepo: accountRepo,
		cache:       cache,
		logger:      logger,
	}
}

// BalanceOfInput represents a balance query.
type BalanceOfInput struct {
	AccountID        string
	RequestingUserID string
}

// BalanceOf returns the derived balance of an owned account. The value
// is always computed from the posting history; the cache is a read
// optimization invalidated on every posting commit.
func (uc *LedgerUseCase) BalanceOf(ctx context.Context, input BalanceOfInput) (decimal.Decimal, error) {
	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return decimal.Zero, err
	}

	if !account.OwnedBy(input.RequestingUserID) {
		return decimal.Zero, domain.ErrNotAccountOwner
	}

	if cached, ok := uc.cachedBalance(ctx, input.AccountID); ok {
		return cached, nil
	}

	balance, err := uc.postingRepo.BalanceOf(ctx, input.AccountID)
	if err != nil {
		return decimal.Zero, err
	}

	uc.storeBalance(ctx, input.AccountID, balance)

	return balance, nil
}

func (uc *LedgerUseCase) cachedBalance(ctx context.Context, accountID string) (decimal.Decimal, bool) {
	if uc.cache == nil {
		return decimal.Zero, false
	}

	raw, err := uc.cache.Get(ctx, balanceCacheKey(accountID))
	if err != nil || raw == nil {
		return decimal.Zero, false
	}

	balance, err := decimal.NewFromString(string(raw))
	if err != nil {
		uc.logger.Warn().Err(err).Str("account_id", accountID).Msg("dropping malformed cached balance")
		return decimal.Zero, false
	}

	return balance, true
}

func (uc *LedgerUseCase) storeBalance(ctx context.Context, accountID string, balance decimal.Decimal) {
	if uc.cache == nil {
		return
	}

	if err := uc.cache.Set(ctx, balanceCacheKey(accountID), []byte(balance.String()), BalanceCacheTTL); err != nil {
		uc.logger.Warn().Err(err).Str("account_id", accountID).Msg("balance cache write failed")
	}
}

// ListPostingsInput represents input for listing an account's postings.
type ListPostingsInput struct {
	AccountID        string
	RequestingUserID string
	Limit            int
	Offset           int
}

// ListPostings lists the posting history of an owned account.
func (uc *LedgerUseCase) ListPostings(ctx context.Context, input ListPostingsInput) ([]*domain.Posting, error) {
	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if !account.OwnedBy(input.RequestingUserID) {
		return nil, domain.ErrNotAccountOwner
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.postingRepo.GetByAccount(ctx, input.AccountID, limit, offset)
}

// GetPostingsByTransaction returns the posting pair of a transaction.
func (uc *LedgerUseCase) GetPostingsByTransaction(ctx context.Context, transactionID string) ([]*domain.Posting, error) {
	return uc.postingRepo.GetByTransaction(ctx, transactionID)
}

// ConsistencyReport describes a ledger-wide consistency check.
type ConsistencyReport struct {
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
	Consistent   bool
	CheckedAt    time.Time
}

// CheckConsistency verifies that ledger-wide debits equal credits.
// Every posting group writes one DEBIT and one CREDIT of the same
// magnitude, so any imbalance means a broken invariant.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	debits, credits, err := uc.postingRepo.SumByType(ctx)
	if err != nil {
		return nil, err
	}

	return &ConsistencyReport{
		TotalDebits:  debits,
		TotalCredits: credits,
		Consistent:   debits.Equal(credits),
		CheckedAt:    time.Now().UTC(),
	}, nil
}
