package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Phone        *string   `json:"phone,omitempty"`
	Email        *string   `json:"email,omitempty"`
	PasswordHash *string   `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Identity returns the session identity the client side sees for u.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, DisplayName: u.DisplayName()}
}

type CreateUserParams struct {
	Phone        string
	PasswordHash string
	FirstName    string
	LastName     string
}
