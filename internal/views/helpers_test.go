package views

import (
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/barberbook/internal/models"
)

// reviewsWithRatings builds reviews newest first, one minute apart.
func reviewsWithRatings(ratings ...int) []models.Review {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	out := make([]models.Review, len(ratings))
	for i, r := range ratings {
		out[i] = models.Review{
			ID:        uuid.New(),
			AuthorID:  uuid.New(),
			Rating:    r,
			Comment:   "comment",
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return out
}

func chunkSizes(chunks [][]models.Review) []int {
	sizes := make([]int, len(chunks))
	for i, c := range chunks {
		sizes[i] = len(c)
	}
	return sizes
}
