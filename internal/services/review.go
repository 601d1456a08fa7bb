package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/barberbook/internal/engagement"
	"github.com/HammerMeetNail/barberbook/internal/models"
)

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrNotReviewAuthor     = errors.New("not the author of this review")
	ErrReviewQuotaExceeded = errors.New("review limit reached")
	ErrInvalidReview       = errors.New("invalid review")
)

// reviewSelect projects a review row joined to its author. Callers supply
// the FROM source aliased as r.
const reviewSelect = `SELECT r.id, r.user_id, r.rating, r.comment, r.created_at, u.first_name, u.last_name`

// ReviewService is the authority for review writes. It re-checks every rule
// the client mirrors, so a bypassed client cannot exceed the quota or edit
// another author's review.
type ReviewService struct {
	db DB
}

func NewReviewService(db DB) *ReviewService {
	return &ReviewService{db: db}
}

func (s *ReviewService) List(ctx context.Context) ([]models.Review, error) {
	rows, err := s.db.Query(ctx,
		reviewSelect+`
		 FROM reviews r
		 JOIN users u ON u.id = r.user_id
		 ORDER BY r.created_at DESC, r.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reviews: %w", err)
	}
	return reviews, nil
}

func (s *ReviewService) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int, error) {
	return countByAuthor(ctx, s.db, authorID)
}

func (s *ReviewService) Create(ctx context.Context, params models.CreateReviewParams) (*models.Review, error) {
	comment, err := checkReview(params.Rating, params.Comment)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // Rollback is a no-op after commit

	if err := lockAuthor(ctx, tx, params.AuthorID); err != nil {
		return nil, err
	}

	count, err := countByAuthor(ctx, tx, params.AuthorID)
	if err != nil {
		return nil, err
	}
	if count >= models.MaxReviewsPerUser {
		return nil, ErrReviewQuotaExceeded
	}

	review, err := scanReview(tx.QueryRow(ctx,
		`WITH r AS (
		   INSERT INTO reviews (user_id, rating, comment)
		   VALUES ($1, $2, $3)
		   RETURNING id, user_id, rating, comment, created_at
		 )
		 `+reviewSelect+` FROM r JOIN users u ON u.id = r.user_id`,
		params.AuthorID, params.Rating, comment,
	))
	if err != nil {
		return nil, fmt.Errorf("creating review: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return &review, nil
}

func (s *ReviewService) Update(ctx context.Context, params models.UpdateReviewParams) (*models.Review, error) {
	comment, err := checkReview(params.Rating, params.Comment)
	if err != nil {
		return nil, err
	}

	review, err := scanReview(s.db.QueryRow(ctx,
		`WITH r AS (
		   UPDATE reviews SET rating = $3, comment = $4
		   WHERE id = $1 AND user_id = $2
		   RETURNING id, user_id, rating, comment, created_at
		 )
		 `+reviewSelect+` FROM r JOIN users u ON u.id = r.user_id`,
		params.ID, params.AuthorID, params.Rating, comment,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, s.missOrForeign(ctx, params.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("updating review: %w", err)
	}
	return &review, nil
}

func (s *ReviewService) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	result, err := s.db.Exec(ctx,
		`DELETE FROM reviews WHERE id = $1 AND user_id = $2`,
		id, authorID,
	)
	if err != nil {
		return fmt.Errorf("deleting review: %w", err)
	}
	if result.RowsAffected() == 0 {
		return s.missOrForeign(ctx, id)
	}
	return nil
}

// missOrForeign explains why a scoped write touched no row.
func (s *ReviewService) missOrForeign(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM reviews WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking review existence: %w", err)
	}
	if exists {
		return ErrNotReviewAuthor
	}
	return ErrReviewNotFound
}

func countByAuthor(ctx context.Context, q Querier, authorID uuid.UUID) (int, error) {
	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE user_id = $1`, authorID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting reviews: %w", err)
	}
	return count, nil
}

// checkReview applies the shared review rules and returns the comment as it
// should be stored.
func checkReview(rating int, comment string) (string, error) {
	if verr := engagement.CheckReview(rating, comment); verr != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidReview, verr.Message)
	}
	return strings.TrimSpace(comment), nil
}

func scanReview(row Row) (models.Review, error) {
	var (
		review      models.Review
		first, last string
	)
	err := row.Scan(&review.ID, &review.AuthorID, &review.Rating, &review.Comment, &review.CreatedAt, &first, &last)
	if err != nil {
		return models.Review{}, err
	}
	review.AuthorDisplayName = strings.TrimSpace(first + " " + last)
	return review, nil
}
