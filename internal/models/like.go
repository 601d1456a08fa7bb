package models

import "github.com/google/uuid"

// Like is a (user, catalogue item) membership. At most one exists per pair.
type Like struct {
	UserID uuid.UUID `json:"user_id"`
	ItemID string    `json:"item_id"`
}

// LikeState is what a like control renders for one item.
type LikeState struct {
	ItemID string `json:"item_id"`
	Liked  bool   `json:"liked"`
	Count  int    `json:"count"`
}
