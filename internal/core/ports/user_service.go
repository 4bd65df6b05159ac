package ports

import (
	"context"

	"github.com/wasp-platform/user-service/internal/core/domain"
)

type CreateUserInput struct {
	Name string
	Role domain.Role
}

type UpdateUserInput struct {
	Name *string
	Role *domain.Role
}

// CreatedCredential pairs a user record with generated plaintext credential
// material. The plaintext is surfaced exactly once, at generation time.
type CreatedCredential struct {
	User     domain.User
	Password string
}

// LoginResult is the token authority's response, passed through verbatim.
type LoginResult struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"`
}

// UserService exposes the identity operations consumed by the transport
// layer. Every method authorizes the acting identity before touching state
// and returns domain errors for the transport to map.
type UserService interface {
	ListUsers(ctx context.Context, actingID string) ([]domain.User, error)
	GetCurrentUser(ctx context.Context, actingID string) (*domain.User, error)
	GetUser(ctx context.Context, actingID, targetID string) (*domain.User, error)
	CreateUser(ctx context.Context, actingID string, input CreateUserInput) (*CreatedCredential, error)
	UpdateUser(ctx context.Context, actingID, targetID string, input UpdateUserInput) (*domain.User, error)
	SetOwnPassword(ctx context.Context, actingID, plaintext string) (*domain.User, error)
	ResetPassword(ctx context.Context, actingID, targetID string) (*CreatedCredential, error)
	Login(ctx context.Context, name, plaintext string) (*LoginResult, error)
}
