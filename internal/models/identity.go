package models

import "github.com/google/uuid"

// Identity is who is acting. The zero value is the anonymous visitor.
type Identity struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
}

var Anonymous = Identity{}

func (i Identity) IsAuthenticated() bool {
	return i.UserID != uuid.Nil
}

func (i Identity) Is(userID uuid.UUID) bool {
	return i.IsAuthenticated() && i.UserID == userID
}
