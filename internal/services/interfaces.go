package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/barberbook/internal/models"
)

type UserServiceInterface interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Authenticate(ctx context.Context, phone, password string) (*models.User, error)
}

type SessionServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID) (string, error)
	Validate(ctx context.Context, token string) (uuid.UUID, error)
	Delete(ctx context.Context, token string) error
	BeginOAuth(ctx context.Context) (state, nonce string, err error)
	FinishOAuth(ctx context.Context, state string) (string, error)
}

type ProviderAuthServiceInterface interface {
	SignInWithProvider(ctx context.Context, claims IdentityClaims) (*models.User, error)
}

type ReviewServiceInterface interface {
	List(ctx context.Context) ([]models.Review, error)
	CountByAuthor(ctx context.Context, authorID uuid.UUID) (int, error)
	Create(ctx context.Context, params models.CreateReviewParams) (*models.Review, error)
	Update(ctx context.Context, params models.UpdateReviewParams) (*models.Review, error)
	Delete(ctx context.Context, id, authorID uuid.UUID) error
}

type LikeServiceInterface interface {
	List(ctx context.Context) ([]models.Like, error)
	Add(ctx context.Context, userID uuid.UUID, itemID string) error
	Remove(ctx context.Context, userID uuid.UUID, itemID string) error
}

var (
	_ UserServiceInterface         = (*UserService)(nil)
	_ SessionServiceInterface      = (*SessionService)(nil)
	_ ProviderAuthServiceInterface = (*ProviderAuthService)(nil)
	_ ReviewServiceInterface       = (*ReviewService)(nil)
	_ LikeServiceInterface         = (*LikeService)(nil)
	_ OAuthProvider                = (*OIDCProvider)(nil)
	_ KeyValue                     = (*RedisKV)(nil)
	_ DB                           = (*PgxDB)(nil)
)
