package dto

import (
	"time"

	"github.com/gestar-hq/gestar-service/internal/domain"
)

// LoginRequest payload. Password is optional for directory entries
// that never had credentials provisioned.
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateUserRequest payload for new directory entries.
type CreateUserRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Role     domain.UserRole `json:"role"`
	Area     string          `json:"area"`
	Password *string         `json:"password"`
}

// UpdateUserRequest payload. Absent fields stay untouched.
type UpdateUserRequest struct {
	Role   *domain.UserRole `json:"role"`
	Area   *string          `json:"area"`
	Email  *string          `json:"email"`
	Active *bool            `json:"active"`
}

// UserResponse represents a directory entry.
type UserResponse struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      domain.UserRole `json:"role"`
	Area      string          `json:"area"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
