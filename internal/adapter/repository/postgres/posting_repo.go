package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/moneyledger/moneyledger/internal/domain"
	"github.com/moneyledger/moneyledger/internal/usecase"
)

// PostingRepository implements usecase.PostingRepository. Postings are
// append-only; the table has no UPDATE or DELETE paths.
type PostingRepository struct {
	pool querier
}

// NewPostingRepository creates a new PostingRepository.
func NewPostingRepository(pool *pgxpool.Pool) *PostingRepository {
	return &PostingRepository{pool: pool}
}

func newPostingRepositoryWithPool(pool querier) *PostingRepository {
	return &PostingRepository{pool: pool}
}

const postingColumns = `id, account_id, transaction_id, entry_type, amount, created_at`

// The balance of an account is the sum of its credits minus the sum
// of its debits. COALESCE covers accounts with no postings yet.
const balanceQuery = `
	SELECT COALESCE(SUM(
		CASE WHEN entry_type = 'CREDIT' THEN amount ELSE -amount END
	), 0)
	FROM postings
	WHERE account_id = $1`

// Create appends a posting inside the posting group.
func (r *PostingRepository) Create(ctx context.Context, tx usecase.Transaction, posting *domain.Posting) error {
	_, err := txQuerier(tx).Exec(ctx, `
		INSERT INTO postings (`+postingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		posting.ID,
		posting.AccountID,
		posting.TransactionID,
		string(posting.Type),
		decimalToNumeric(posting.Amount),
		timeToPgTimestamptz(posting.CreatedAt),
	)

	return err
}

// GetByTransaction retrieves the postings of a transaction.
func (r *PostingRepository) GetByTransaction(ctx context.Context, transactionID string) ([]*domain.Posting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+postingColumns+`
		FROM postings
		WHERE transaction_id = $1
		ORDER BY entry_type`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPostings(rows)
}

// GetByAccount lists an account's postings, newest first.
func (r *PostingRepository) GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Posting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+postingColumns+`
		FROM postings
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, accountID, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPostings(rows)
}

// BalanceOf derives the account balance from its posting history.
func (r *PostingRepository) BalanceOf(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return r.balance(ctx, r.pool, accountID)
}

// BalanceOfTx derives the balance inside a transaction, after the
// account row has been locked.
func (r *PostingRepository) BalanceOfTx(ctx context.Context, tx usecase.Transaction, accountID string) (decimal.Decimal, error) {
	return r.balance(ctx, txQuerier(tx), accountID)
}

func (r *PostingRepository) balance(ctx context.Context, q querier, accountID string) (decimal.Decimal, error) {
	var sum pgtype.Numeric

	if err := q.QueryRow(ctx, balanceQuery, accountID).Scan(&sum); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

// SumByType returns the ledger-wide debit and credit totals.
func (r *PostingRepository) SumByType(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	var debits, credits pgtype.Numeric

	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'DEBIT'), 0),
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'CREDIT'), 0)
		FROM postings`).Scan(&debits, &credits)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(debits), numericToDecimal(credits), nil
}

func scanPostings(rows pgx.Rows) ([]*domain.Posting, error) {
	var postings []*domain.Posting

	for rows.Next() {
		var (
			posting   domain.Posting
			entryType string
			amount    pgtype.Numeric
			createdAt pgtype.Timestamptz
		)

		err := rows.Scan(
			&posting.ID,
			&posting.AccountID,
			&posting.TransactionID,
			&entryType,
			&amount,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		posting.Type = domain.EntryType(entryType)
		posting.Amount = numericToDecimal(amount)
		posting.CreatedAt = createdAt.Time

		postings = append(postings, &posting)
	}

	return postings, rows.Err()
}
