package domain

import (
	"errors"
	"time"
)

// User represents an authenticated identity that can own accounts.
type User struct {
	ID             string
	Email          string
	Name           string
	HashedPassword string
	Role           Role
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Role is a user's access level.
type Role string

const (
	// RoleUser is a regular account holder.
	RoleUser Role = "user"

	// RoleSystem identifies the ledger's system identity. Only system
	// users may submit initial-funds transactions, which debit the
	// system account without a balance check.
	RoleSystem Role = "system"
)

// IsValid checks if the role is known.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleSystem
}

// CanFund reports whether the role may submit system-funding
// transactions.
func (r Role) CanFund() bool {
	return r == RoleSystem
}

// Authentication errors
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrForbiddenRole = errors.New("insufficient role for this operation")
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("user with this email already exists")
)
