package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/barberbook/internal/models"
)

var ErrItemNotFound = errors.New("catalogue item not found")

type LikeService struct {
	db Querier
}

func NewLikeService(db Querier) *LikeService {
	return &LikeService{db: db}
}

func (s *LikeService) List(ctx context.Context) ([]models.Like, error) {
	rows, err := s.db.Query(ctx, `SELECT user_id, item_id FROM likes ORDER BY item_id, created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing likes: %w", err)
	}
	defer rows.Close()

	likes := []models.Like{}
	for rows.Next() {
		var like models.Like
		if err := rows.Scan(&like.UserID, &like.ItemID); err != nil {
			return nil, fmt.Errorf("scanning like: %w", err)
		}
		likes = append(likes, like)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating likes: %w", err)
	}
	return likes, nil
}

// Add is idempotent: liking an item twice leaves one like.
func (s *LikeService) Add(ctx context.Context, userID uuid.UUID, itemID string) error {
	if _, ok := models.FindCatalogueItem(itemID); !ok {
		return ErrItemNotFound
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO likes (user_id, item_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, item_id) DO NOTHING`,
		userID, itemID,
	)
	if err != nil {
		return fmt.Errorf("adding like: %w", err)
	}
	return nil
}

// Remove is idempotent like Add, so a retried toggle cannot fail on a like
// that is already gone.
func (s *LikeService) Remove(ctx context.Context, userID uuid.UUID, itemID string) error {
	if _, ok := models.FindCatalogueItem(itemID); !ok {
		return ErrItemNotFound
	}
	_, err := s.db.Exec(ctx,
		`DELETE FROM likes WHERE user_id = $1 AND item_id = $2`,
		userID, itemID,
	)
	if err != nil {
		return fmt.Errorf("removing like: %w", err)
	}
	return nil
}
