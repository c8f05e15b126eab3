package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
)

func TestPostingRepositoryBalanceOf(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("SELECT COALESCE").
		WithArgs("acc-1").
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).
			AddRow(decimalToNumeric(decimal.NewFromInt(420))))

	repo := newPostingRepositoryWithPool(mockPool)
	balance, err := repo.BalanceOf(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !balance.Equal(decimal.NewFromInt(420)) {
		t.Errorf("balance %s, want 420", balance)
	}

	assertExpectations(t, mockPool)
}

func TestPostingRepositoryBalanceOfEmptyAccount(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("SELECT COALESCE").
		WithArgs("acc-empty").
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).
			AddRow(decimalToNumeric(decimal.Zero)))

	repo := newPostingRepositoryWithPool(mockPool)
	balance, err := repo.BalanceOf(context.Background(), "acc-empty")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !balance.IsZero() {
		t.Errorf("balance %s, want 0", balance)
	}

	assertExpectations(t, mockPool)
}

func TestPostingRepositorySumByType(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("SELECT").
		WillReturnRows(pgxmock.NewRows([]string{"debits", "credits"}).
			AddRow(decimalToNumeric(decimal.NewFromInt(900)), decimalToNumeric(decimal.NewFromInt(900))))

	repo := newPostingRepositoryWithPool(mockPool)
	debits, credits, err := repo.SumByType(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !debits.Equal(credits) {
		t.Errorf("debits %s != credits %s", debits, credits)
	}

	assertExpectations(t, mockPool)
}
