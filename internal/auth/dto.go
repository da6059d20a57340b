package auth

import (
	"encoding/json"
	"time"
)

// Credentials captures the email/password pair sent to the login endpoint.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User is the account profile returned by the API.
type User struct {
	ID         string     `json:"_id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	IsVerified bool       `json:"isVerified"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

// LoginResult is returned after a successful login. The token is already persisted.
type LoginResult struct {
	Token   string `json:"token"`
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}

// LogoutResult always reports success; Remote tells whether the server acknowledged it.
type LogoutResult struct {
	Success bool   `json:"success"`
	Remote  bool   `json:"remote"`
	Message string `json:"message"`
}

// RegisterRequest is the sign-up payload. ConfirmPassword is checked locally and never sent.
type RegisterRequest struct {
	Name            string `json:"name" validate:"required,notblank"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"-" validate:"omitempty,eqfield=Password"`
	Role            string `json:"role" validate:"required,oneof=donor volunteer recipient"`
}

// RegisterResult reports whether the new account still awaits email verification.
type RegisterResult struct {
	User                *User  `json:"user,omitempty"`
	Message             string `json:"message,omitempty"`
	PendingVerification bool   `json:"pendingVerification"`
}

type sessionPayload struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}
