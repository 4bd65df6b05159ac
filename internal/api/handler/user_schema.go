package handler

import (
	"time"

	"github.com/wasp-platform/user-service/internal/core/domain"
)

// --- Request types ---

type createUserRequest struct {
	Name string `json:"name" validate:"required"`
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type patchUserRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1"`
	Role *string `json:"role" validate:"omitempty,oneof=user admin removed"`
}

type putPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Name     string `json:"name"     validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=1"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract is not coupled to
// internal domain changes. Password material never appears here except in
// userWithPasswordResponse, which is only used where a password was just
// generated.

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type userWithPasswordResponse struct {
	userResponse
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedBy: u.CreatedBy,
		CreatedAt: u.CreatedAt,
	}
}

func toUserListResponse(users []domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}
