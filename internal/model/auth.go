package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

// ForgotPasswordResponse carries the reset secret only when the diagnostic
// echo is enabled.
type ForgotPasswordResponse struct {
	Message          string `json:"message"`
	ResetToken       string `json:"resetToken,omitempty"`
	ExpiresInMinutes int    `json:"expiresInMinutes,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type AuthMeResponse struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
}

// AuthUser is the identity carried by a verified session token.
type AuthUser struct {
	ID    uuid.UUID
	Email string
}

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// PublicUser is the client-facing view of a user; it never includes the hash.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

type ResetToken struct {
	ID        ulid.ULID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
