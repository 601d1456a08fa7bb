package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/barberbook/internal/models"
)

var (
	ErrInvalidProviderClaims  = errors.New("invalid provider claims")
	ErrProviderIdentityExists = errors.New("provider identity already linked")
)

type ProviderAuthService struct {
	db DB
}

func NewProviderAuthService(db DB) *ProviderAuthService {
	return &ProviderAuthService{db: db}
}

// SignInWithProvider returns the user linked to the provider subject,
// creating and linking a new user on first sign-in.
func (s *ProviderAuthService) SignInWithProvider(ctx context.Context, claims IdentityClaims) (*models.User, error) {
	subject := strings.TrimSpace(claims.Subject)
	if strings.TrimSpace(string(claims.Provider)) == "" || subject == "" {
		return nil, ErrInvalidProviderClaims
	}

	user, err := s.getUserByProviderSubject(ctx, s.db, claims.Provider, subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	user, err = s.createLinkedUser(ctx, claims, subject)
	if errors.Is(err, ErrProviderIdentityExists) {
		// Lost a race with a concurrent first sign-in for the same subject.
		return s.getUserByProviderSubject(ctx, s.db, claims.Provider, subject)
	}
	return user, err
}

func (s *ProviderAuthService) createLinkedUser(ctx context.Context, claims IdentityClaims, subject string) (*models.User, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // Rollback is a no-op after commit

	var email *string
	if e := strings.ToLower(strings.TrimSpace(claims.Email)); e != "" {
		email = &e
	}
	first, last := claims.Names()

	user := &models.User{}
	err = tx.QueryRow(ctx,
		`INSERT INTO users (email, first_name, last_name)
		 VALUES ($1, $2, $3)
		 RETURNING `+userColumns,
		email, first, last,
	).Scan(userFields(user)...)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO user_identities (user_id, provider, subject)
		 VALUES ($1, $2, $3)`,
		user.ID, claims.Provider, subject,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrProviderIdentityExists
		}
		return nil, fmt.Errorf("linking user identity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return user, nil
}

func (s *ProviderAuthService) getUserByProviderSubject(ctx context.Context, q Querier, provider Provider, subject string) (*models.User, error) {
	user := &models.User{}
	err := q.QueryRow(ctx,
		`SELECT u.id, u.phone, u.email, u.password_hash, u.first_name, u.last_name, u.created_at
		 FROM user_identities ui
		 JOIN users u ON u.id = ui.user_id
		 WHERE ui.provider = $1 AND ui.subject = $2`,
		provider, subject,
	).Scan(userFields(user)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by provider identity: %w", err)
	}
	return user, nil
}
