package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 500
	// MaxReviewsPerUser caps how many reviews one author may own at once.
	MaxReviewsPerUser = 3
)

type Review struct {
	ID                uuid.UUID `json:"id"`
	AuthorID          uuid.UUID `json:"author_id"`
	Rating            int       `json:"rating"`
	Comment           string    `json:"comment"`
	CreatedAt         time.Time `json:"created_at"`
	AuthorDisplayName string    `json:"author_display_name"`
}

type CreateReviewParams struct {
	AuthorID uuid.UUID
	Rating   int
	Comment  string
}

type UpdateReviewParams struct {
	ID       uuid.UUID
	AuthorID uuid.UUID
	Rating   int
	Comment  string
}
