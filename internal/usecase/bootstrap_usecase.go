package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/moneyledger/moneyledger/internal/domain"
)

// BootstrapUseCase provisions the system identity a fresh deployment
// needs before initial-funds transactions can run.
type BootstrapUseCase struct {
	userRepo    UserRepository
	accountRepo AccountRepository
	idGenerator IDGenerator
}

// NewBootstrapUseCase creates a new BootstrapUseCase.
func NewBootstrapUseCase(userRepo UserRepository, accountRepo AccountRepository, idGenerator IDGenerator) *BootstrapUseCase {
	return &BootstrapUseCase{
		userRepo:    userRepo,
		accountRepo: accountRepo,
		idGenerator: idGenerator,
	}
}

// BootstrapInput carries the system identity's credentials.
type BootstrapInput struct {
	Email    string
	Password string
	Currency string
}

// BootstrapResult reports what EnsureSystemIdentity found or created.
type BootstrapResult struct {
	User           *domain.User
	Account        *domain.Account
	UserCreated    bool
	AccountCreated bool
}

// EnsureSystemIdentity creates the system-role user and its reserve
// account if they do not exist. Re-running is safe: existing rows are
// returned untouched. A same-email user with a non-system role is an
// error rather than a silent repurpose.
func (uc *BootstrapUseCase) EnsureSystemIdentity(ctx context.Context, input BootstrapInput) (*BootstrapResult, error) {
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))

	result := &BootstrapResult{}

	user, err := uc.userRepo.GetByEmail(ctx, input.Email)
	switch {
	case err == nil:
		if user.Role != domain.RoleSystem {
			return nil, fmt.Errorf("user %s exists with role %q: %w", input.Email, user.Role, domain.ErrEmailTaken)
		}
	case errors.Is(err, domain.ErrUserNotFound):
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, hashErr
		}

		now := time.Now()
		user = &domain.User{
			ID:             uc.idGenerator.Generate(),
			Email:          input.Email,
			Name:           "System",
			HashedPassword: string(hashed),
			Role:           domain.RoleSystem,
			Active:         true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := uc.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		result.UserCreated = true
	default:
		return nil, err
	}
	result.User = user

	account, err := uc.accountRepo.GetSystemAccount(ctx, user.ID)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAccountNotFound):
		now := time.Now()
		account = &domain.Account{
			ID:        uc.idGenerator.Generate(),
			UserID:    user.ID,
			Currency:  currency,
			Status:    domain.AccountStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uc.accountRepo.Create(ctx, account); err != nil {
			return nil, err
		}
		result.AccountCreated = true
	default:
		return nil, err
	}
	result.Account = account

	return result, nil
}
