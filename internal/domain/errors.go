package domain

import "errors"

var (
	// Validation errors
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrSameAccount           = errors.New("cannot transfer to the same account")
	ErrAccountRequired       = errors.New("fromAccount and toAccount are required")
	ErrMissingIdempotencyKey = errors.New("idempotency key is required")
	ErrInvalidEntryType      = errors.New("entry type must be DEBIT or CREDIT")

	// Account errors
	ErrAccountNotFound  = errors.New("account not found")
	ErrNotAccountOwner  = errors.New("not authorized to transfer from this account")
	ErrAccountInactive  = errors.New("account is not active")
	ErrCurrencyMismatch = errors.New("cannot transfer between different currencies")

	// Transaction errors
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInsufficientFunds   = errors.New("insufficient balance")
	// ErrDuplicateInFlight means another submission with the same
	// idempotency key is being processed; the caller should poll or
	// retry later with the same key.
	ErrDuplicateInFlight = errors.New("transaction is still processing")
	// ErrTerminalDuplicate means the idempotency key belongs to a
	// FAILED or REVERSED transaction; the caller must retry with a new
	// key, the engine never reprocesses these.
	ErrTerminalDuplicate = errors.New("transaction previously failed or was reversed, retry with a new idempotency key")
	// ErrPostingFailed means the atomic posting group could not commit.
	ErrPostingFailed = errors.New("transaction failed, please retry")
)
