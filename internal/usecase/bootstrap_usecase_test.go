package usecase_test

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/moneyledger/moneyledger/internal/domain"
	"github.com/moneyledger/moneyledger/internal/usecase"
	"github.com/moneyledger/moneyledger/internal/usecase/mocks"
)

func newBootstrapFixture() (*usecase.BootstrapUseCase, *mocks.MockUserRepository, *mocks.MockAccountRepository) {
	users := mocks.NewMockUserRepository()
	accounts := mocks.NewMockAccountRepository()
	uc := usecase.NewBootstrapUseCase(users, accounts, mocks.NewMockIDGenerator())
	return uc, users, accounts
}

func TestBootstrap_CreatesSystemIdentity(t *testing.T) {
	uc, _, _ := newBootstrapFixture()

	result, err := uc.EnsureSystemIdentity(context.Background(), usecase.BootstrapInput{
		Email:    "system@moneyledger.local",
		Password: "long-enough-secret",
		Currency: "usd",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.UserCreated || !result.AccountCreated {
		t.Fatalf("expected fresh user and account, got %+v", result)
	}
	if result.User.Role != domain.RoleSystem || !result.User.Active {
		t.Errorf("unexpected user: %+v", result.User)
	}
	if result.Account.Currency != "USD" || result.Account.Status != domain.AccountStatusActive {
		t.Errorf("unexpected account: %+v", result.Account)
	}
	if result.Account.UserID != result.User.ID {
		t.Errorf("account not owned by the system user: %+v", result.Account)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(result.User.HashedPassword), []byte("long-enough-secret")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestBootstrap_IsIdempotent(t *testing.T) {
	uc, _, _ := newBootstrapFixture()

	input := usecase.BootstrapInput{
		Email:    "system@moneyledger.local",
		Password: "long-enough-secret",
		Currency: "USD",
	}

	first, err := uc.EnsureSystemIdentity(context.Background(), input)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	second, err := uc.EnsureSystemIdentity(context.Background(), input)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if second.UserCreated || second.AccountCreated {
		t.Fatalf("second run must not create anything, got %+v", second)
	}
	if second.User.ID != first.User.ID || second.Account.ID != first.Account.ID {
		t.Errorf("second run returned different rows: %+v vs %+v", first, second)
	}
}

func TestBootstrap_RefusesToRepurposeRegularUser(t *testing.T) {
	uc, users, _ := newBootstrapFixture()

	users.Create(context.Background(), &domain.User{
		ID:    "user-1",
		Email: "system@moneyledger.local",
		Role:  domain.RoleUser,
	})

	_, err := uc.EnsureSystemIdentity(context.Background(), usecase.BootstrapInput{
		Email:    "system@moneyledger.local",
		Password: "long-enough-secret",
		Currency: "USD",
	})
	if err == nil {
		t.Fatal("expected error for a same-email regular user")
	}
}

func TestBootstrap_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input usecase.BootstrapInput
	}{
		{"bad email", usecase.BootstrapInput{Email: "nope", Password: "long-enough-secret", Currency: "USD"}},
		{"short password", usecase.BootstrapInput{Email: "system@moneyledger.local", Password: "short", Currency: "USD"}},
		{"unknown currency", usecase.BootstrapInput{Email: "system@moneyledger.local", Password: "long-enough-secret", Currency: "XYZ"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _, _ := newBootstrapFixture()
			if _, err := uc.EnsureSystemIdentity(context.Background(), tt.input); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
