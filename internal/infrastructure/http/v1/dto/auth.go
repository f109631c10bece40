package dto

import (
	"time"

	"facturador/internal/core/id"
	"facturador/internal/domain/auth"
)

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest creates a new user account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID    id.ID  `json:"id"`
	Email string `json:"email"`
}

// LoginResponse carries the session token.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// NewLoginResponse maps a session to the response shape.
func NewLoginResponse(s *auth.Session) LoginResponse {
	return LoginResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User: UserResponse{
			ID:    s.User.ID,
			Email: s.User.Email,
		},
	}
}
