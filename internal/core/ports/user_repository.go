package ports

import (
	"context"

	"github.com/wasp-platform/user-service/internal/core/domain"
)

// UserUpdate carries the fields a patch may change. Nil means "leave as is".
type UserUpdate struct {
	Name         *string
	Role         *domain.Role
	PasswordHash *string
}

// UserRepository defines the persistence contract for user records. The
// store is the sole source of generated ids and timestamps and must reject a
// duplicate name atomically with domain.ErrUserExists; the service's own
// existence checks are advisory.
type UserRepository interface {
	// FindByID returns the user with the given id or domain.ErrUserNotFound.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByName returns the user with the given name or domain.ErrUserNotFound.
	FindByName(ctx context.Context, name string) (*domain.User, error)
	// List returns all users ordered by id ascending.
	List(ctx context.Context) ([]domain.User, error)
	// Create inserts a new user and returns the stored row.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update applies the supplied fields, refreshes the update timestamp and
	// returns the fresh row, or domain.ErrUserNotFound.
	Update(ctx context.Context, id string, update UserUpdate) (*domain.User, error)
}
