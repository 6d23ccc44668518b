package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	// RoleUser is a regular depositor/borrower.
	RoleUser UserRole = "user"
	// RoleAdmin is the designated pool owner; admin withdrawals sweep the
	// pooled balance rather than a user's ledger balance.
	RoleAdmin UserRole = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         UserRole
	Status       UserStatus
	CreatedAt    time.Time
}
