package dto

import "github.com/caratemple/forum/internal/session"

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	IsAdmin  bool   `json:"is_admin"`
}

// ToCurrentUserDTO converts the session identity, or returns nil for guests
func ToCurrentUserDTO(identity *session.Identity) *UserDTO {
	if identity == nil {
		return nil
	}
	return &UserDTO{
		ID:       identity.ID,
		Username: identity.Username,
		Email:    identity.Email,
		IsAdmin:  identity.IsAdmin,
	}
}
