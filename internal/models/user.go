package models

import "time"

// User represents an administrator account
type User struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Password  string     `json:"-"` // Never serialize password hash
	Role      Role       `json:"role"`
	Avatar    string     `json:"avatar"`
	IsActive  bool       `json:"isActive"`
	LastLogin *time.Time `json:"lastLogin"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Identity returns the principal claims of the user
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents an admin account creation request
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Role     Role   `json:"role" validate:"omitempty,oneof=admin super_admin"`
	Avatar   string `json:"avatar" validate:"omitempty,max=500"`
}

// UpdateProfileRequest is a partial profile update
type UpdateProfileRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email  *string `json:"email" validate:"omitempty,email,max=255"`
	Avatar *string `json:"avatar" validate:"omitempty,max=500"`
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128"`
}

// RefreshRequest carries a refresh token in the body
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthResult is returned by login and refresh
type AuthResult struct {
	User         *User  `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// UserFilter holds user list filters
type UserFilter struct {
	Role   Role
	Search string
}
