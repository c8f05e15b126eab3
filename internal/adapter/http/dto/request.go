package dto

import (
	"github.com/shopspring/decimal"

	"github.com/moneyledger/moneyledger/internal/usecase"
)

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Email:    r.Email,
		Name:     r.Name,
		Password: r.Password,
	}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Currency string `json:"currency"`
}

// ToUseCaseInput converts to use case input for the given owner.
func (r *CreateAccountRequest) ToUseCaseInput(userID string) usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		UserID:   userID,
		Currency: r.Currency,
	}
}

// SubmitTransferRequest represents a transfer submission. The
// idempotency key normally travels in the Idempotency-Key header; the
// body field is accepted as a fallback when the header is absent.
type SubmitTransferRequest struct {
	FromAccountID  string          `json:"from_account_id"`
	ToAccountID    string          `json:"to_account_id"`
	Amount         decimal.Decimal `json:"amount"`
	IdempotencyKey string          `json:"idempotencyKey"`
}

// ToUseCaseInput converts to use case input.
func (r *SubmitTransferRequest) ToUseCaseInput(idempotencyKey, userID string) usecase.SubmitTransferInput {
	if idempotencyKey == "" {
		idempotencyKey = r.IdempotencyKey
	}
	return usecase.SubmitTransferInput{
		FromAccountID:    r.FromAccountID,
		ToAccountID:      r.ToAccountID,
		Amount:           r.Amount,
		IdempotencyKey:   idempotencyKey,
		RequestingUserID: userID,
	}
}

// FundAccountRequest represents a system-funding submission. The
// idempotency key follows the same header-first, body-fallback rule as
// SubmitTransferRequest.
type FundAccountRequest struct {
	ToAccountID    string          `json:"to_account_id"`
	Amount         decimal.Decimal `json:"amount"`
	IdempotencyKey string          `json:"idempotencyKey"`
}

// ToUseCaseInput converts to use case input.
func (r *FundAccountRequest) ToUseCaseInput(idempotencyKey, userID string) usecase.FundAccountInput {
	if idempotencyKey == "" {
		idempotencyKey = r.IdempotencyKey
	}
	return usecase.FundAccountInput{
		ToAccountID:      r.ToAccountID,
		Amount:           r.Amount,
		IdempotencyKey:   idempotencyKey,
		RequestingUserID: userID,
	}
}
