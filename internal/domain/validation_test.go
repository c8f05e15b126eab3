package domain_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/moneyledger/moneyledger/internal/domain"
)

func TestValidateAmount(t *testing.T) {
	if err := domain.ValidateAmount(decimal.NewFromInt(100)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := domain.ValidateAmount(decimal.Zero); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	if err := domain.ValidateAmount(decimal.NewFromInt(-1)); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	huge, _ := decimal.NewFromString("2000000000000")
	if err := domain.ValidateAmount(huge); !errors.Is(err, domain.ErrAmountTooLarge) {
		t.Errorf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestValidateCurrency(t *testing.T) {
	if err := domain.ValidateCurrency("INR"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := domain.ValidateCurrency(" usd "); err != nil {
		t.Errorf("expected trimmed lowercase code to pass, got %v", err)
	}

	if err := domain.ValidateCurrency("DOGE"); err == nil {
		t.Error("expected error for unsupported currency")
	}
}

func TestValidateEmail(t *testing.T) {
	if err := domain.ValidateEmail("user@example.com"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	for _, bad := range []string{"", "not-an-email", "user@", "@example.com"} {
		if err := domain.ValidateEmail(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := domain.ValidatePassword("longenoughpass"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := domain.ValidatePassword("short"); err == nil {
		t.Error("expected error for short password")
	}
}

func TestValidatePagination(t *testing.T) {
	limit, offset := domain.ValidatePagination(0, -5)
	if limit != 50 || offset != 0 {
		t.Errorf("expected defaults (50, 0), got (%d, %d)", limit, offset)
	}

	limit, _ = domain.ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Errorf("expected limit clamped to 1000, got %d", limit)
	}
}
