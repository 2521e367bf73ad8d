package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered user.
//
// Invariants:
//   - Email is unique across accounts (enforced by the store)
//   - PasswordDigest is a one-way hash, never the submitted plaintext
//   - Inactive is true at creation; only activation (not in this service) clears it
//   - ActivationToken is non-empty after creation
type Account struct {
	ID              uuid.UUID `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	PasswordDigest  string    `json:"-"`
	Inactive        bool      `json:"inactive"`
	ActivationToken string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewAccount builds an account in its only valid initial state.
func NewAccount(id uuid.UUID, username, email, passwordDigest, activationToken string, now time.Time) *Account {
	return &Account{
		ID:              id,
		Username:        username,
		Email:           email,
		PasswordDigest:  passwordDigest,
		Inactive:        true,
		ActivationToken: activationToken,
		CreatedAt:       now,
	}
}

// RegistrationRequest is the candidate payload. Absent, null and non-string
// fields arrive as empty strings.
type RegistrationRequest struct {
	Username string
	Email    string
	Password string
}
