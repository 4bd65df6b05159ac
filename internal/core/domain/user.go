package domain

import (
	"errors"
	"time"
)

// Role classifies what a user is allowed to do. The set is closed: any other
// value is rejected at the boundary, never silently treated as a role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	// RoleRemoved is a terminal soft-delete marker. The row is retained for
	// audit history but the identity loses every capability, including
	// reading itself.
	RoleRemoved Role = "removed"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin || r == RoleRemoved
}

// Active reports whether r still grants any capability at all.
func (r Role) Active() bool {
	return r == RoleUser || r == RoleAdmin
}

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidInput    = errors.New("invalid input")
	ErrTooManyAttempts = errors.New("too many login attempts")
)

// User models an identity record. PasswordHash never leaves the core: list
// and read responses are built from the remaining fields only.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}
