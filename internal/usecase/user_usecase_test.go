package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/moneyledger/moneyledger/internal/domain"
	"github.com/moneyledger/moneyledger/internal/usecase"
	"github.com/moneyledger/moneyledger/internal/usecase/mocks"
)

func TestUserUseCase_Register(t *testing.T) {
	tests := []struct {
		name      string
		input     usecase.RegisterInput
		setup     func(*mocks.MockUserRepository)
		errorType error
	}{
		{
			name:  "successful registration",
			input: usecase.RegisterInput{Email: "alice@example.com", Name: "Alice", Password: "correct-horse"},
			setup: func(repo *mocks.MockUserRepository) {},
		},
		{
			name:      "reject invalid email",
			input:     usecase.RegisterInput{Email: "not-an-email", Name: "Alice", Password: "correct-horse"},
			setup:     func(repo *mocks.MockUserRepository) {},
			errorType: domain.ErrInvalidEmail,
		},
		{
			name:      "reject short password",
			input:     usecase.RegisterInput{Email: "alice@example.com", Name: "Alice", Password: "short"},
			setup:     func(repo *mocks.MockUserRepository) {},
			errorType: domain.ErrPasswordTooWeak,
		},
		{
			name:  "reject taken email",
			input: usecase.RegisterInput{Email: "alice@example.com", Name: "Alice", Password: "correct-horse"},
			setup: func(repo *mocks.MockUserRepository) {
				repo.Create(context.Background(), &domain.User{
					ID: "user-1", Email: "alice@example.com",
				})
			},
			errorType: domain.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockUserRepository()
			idGen := mocks.NewMockIDGenerator()
			tt.setup(repo)

			uc := usecase.NewUserUseCase(repo, idGen)
			user, err := uc.Register(context.Background(), tt.input)

			if tt.errorType != nil {
				if !errors.Is(err, tt.errorType) {
					t.Fatalf("expected error %v, got %v", tt.errorType, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.Role != domain.RoleUser {
				t.Errorf("role %s, want %s", user.Role, domain.RoleUser)
			}
			if user.HashedPassword != "" {
				t.Error("hashed password must not be returned")
			}

			stored, err := repo.GetByEmail(context.Background(), "alice@example.com")
			if err != nil {
				t.Fatalf("user was not persisted: %v", err)
			}
			if stored.HashedPassword == "" || stored.HashedPassword == tt.input.Password {
				t.Error("password must be stored hashed")
			}
		})
	}
}

func TestUserUseCase_Authenticate(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockUserRepository()
	idGen := mocks.NewMockIDGenerator()
	uc := usecase.NewUserUseCase(repo, idGen)

	if _, err := uc.Register(ctx, usecase.RegisterInput{
		Email:    "bob@example.com",
		Name:     "Bob",
		Password: "hunter2hunter2",
	}); err != nil {
		t.Fatalf("setup registration failed: %v", err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		user, err := uc.Authenticate(ctx, usecase.AuthenticateInput{
			Email:    "bob@example.com",
			Password: "hunter2hunter2",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Email != "bob@example.com" {
			t.Errorf("email %s, want bob@example.com", user.Email)
		}
		if user.HashedPassword != "" {
			t.Error("hashed password must not be returned")
		}
	})

	t.Run("email lookup is case-insensitive", func(t *testing.T) {
		_, err := uc.Authenticate(ctx, usecase.AuthenticateInput{
			Email:    "BOB@Example.COM",
			Password: "hunter2hunter2",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := uc.Authenticate(ctx, usecase.AuthenticateInput{
			Email:    "bob@example.com",
			Password: "wrong-password",
		})
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := uc.Authenticate(ctx, usecase.AuthenticateInput{
			Email:    "nobody@example.com",
			Password: "hunter2hunter2",
		})
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}
