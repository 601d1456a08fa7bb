package engagement

import (
	"context"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/barberbook/internal/models"
)

// Gateway is the slice of the remote store the core depends on. Any method
// may fail with a transport error.
type Gateway interface {
	FetchReviews(ctx context.Context) ([]models.Review, error)
	InsertReview(ctx context.Context, authorID uuid.UUID, rating int, comment string) (uuid.UUID, error)
	UpdateReview(ctx context.Context, id uuid.UUID, rating int, comment string) error
	DeleteReview(ctx context.Context, id uuid.UUID) error
	CountReviewsByAuthor(ctx context.Context, authorID uuid.UUID) (int, error)

	FetchLikes(ctx context.Context) ([]models.Like, error)
	InsertLike(ctx context.Context, userID uuid.UUID, itemID string) error
	DeleteLike(ctx context.Context, userID uuid.UUID, itemID string) error
}

// AuthSource is the identity provider as seen by the core.
type AuthSource interface {
	CurrentSession(ctx context.Context) (models.Identity, error)
	OnAuthChange(fn func(models.Identity)) (unsubscribe func())
}
