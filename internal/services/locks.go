package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// lockAuthor serialises review writes by one author for the rest of the
// transaction, so concurrent creates cannot both pass the quota check.
func lockAuthor(ctx context.Context, q Querier, authorID uuid.UUID) error {
	var lockedID uuid.UUID
	err := q.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, authorID).Scan(&lockedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("locking author: %w", err)
	}
	return nil
}
