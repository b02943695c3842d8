package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// LoginRequest payload for staff login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the public view of a staff account.
type UserResponse struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Role        domain.Role `json:"role"`
	DisplayName string      `json:"display_name,omitempty"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// NewUserResponse maps a domain user, dropping the password hash.
func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Role: u.Role, DisplayName: u.DisplayName}
}

// ToDomain converts the wire form back into a user.
func (r UserResponse) ToDomain() domain.User {
	return domain.User{ID: r.ID, Username: r.Username, Role: r.Role, DisplayName: r.DisplayName}
}
