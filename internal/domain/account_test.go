package domain_test

import (
	"testing"

	"github.com/moneyledger/moneyledger/internal/domain"
)

func TestAccountIsActive(t *testing.T) {
	tests := []struct {
		status domain.AccountStatus
		want   bool
	}{
		{domain.AccountStatusActive, true},
		{domain.AccountStatusSuspended, false},
		{domain.AccountStatusClosed, false},
	}

	for _, tt := range tests {
		acc := &domain.Account{Status: tt.status}
		if acc.IsActive() != tt.want {
			t.Errorf("IsActive() with status %s: expected %v", tt.status, tt.want)
		}
	}
}

func TestAccountOwnedBy(t *testing.T) {
	acc := &domain.Account{ID: "acc-1", UserID: "user-1"}

	if !acc.OwnedBy("user-1") {
		t.Error("expected user-1 to own acc-1")
	}

	if acc.OwnedBy("user-2") {
		t.Error("expected user-2 not to own acc-1")
	}
}
