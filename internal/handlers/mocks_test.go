package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/barberbook/internal/middleware"
	"github.com/HammerMeetNail/barberbook/internal/models"
	"github.com/HammerMeetNail/barberbook/internal/services"
)

type mockUserService struct {
	CreateFunc       func(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByIDFunc      func(ctx context.Context, id uuid.UUID) (*models.User, error)
	AuthenticateFunc func(ctx context.Context, phone, password string) (*models.User, error)
}

func (m *mockUserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	return m.CreateFunc(ctx, params)
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockUserService) Authenticate(ctx context.Context, phone, password string) (*models.User, error) {
	return m.AuthenticateFunc(ctx, phone, password)
}

type mockSessionService struct {
	created  []uuid.UUID
	deleted  []string
	states   map[string]string
	createFn func(ctx context.Context, userID uuid.UUID) (string, error)
}

func (m *mockSessionService) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID)
	}
	m.created = append(m.created, userID)
	return "token-" + userID.String(), nil
}

func (m *mockSessionService) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	return uuid.Nil, services.ErrSessionNotFound
}

func (m *mockSessionService) Delete(ctx context.Context, token string) error {
	m.deleted = append(m.deleted, token)
	return nil
}

func (m *mockSessionService) BeginOAuth(ctx context.Context) (string, string, error) {
	if m.states == nil {
		m.states = map[string]string{}
	}
	m.states["state-1"] = "nonce-1"
	return "state-1", "nonce-1", nil
}

func (m *mockSessionService) FinishOAuth(ctx context.Context, state string) (string, error) {
	nonce, ok := m.states[state]
	if !ok {
		return "", services.ErrSessionNotFound
	}
	delete(m.states, state)
	return nonce, nil
}

type mockReviewService struct {
	ListFunc   func(ctx context.Context) ([]models.Review, error)
	CountFunc  func(ctx context.Context, authorID uuid.UUID) (int, error)
	CreateFunc func(ctx context.Context, params models.CreateReviewParams) (*models.Review, error)
	UpdateFunc func(ctx context.Context, params models.UpdateReviewParams) (*models.Review, error)
	DeleteFunc func(ctx context.Context, id, authorID uuid.UUID) error
}

func (m *mockReviewService) List(ctx context.Context) ([]models.Review, error) {
	return m.ListFunc(ctx)
}

func (m *mockReviewService) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int, error) {
	return m.CountFunc(ctx, authorID)
}

func (m *mockReviewService) Create(ctx context.Context, params models.CreateReviewParams) (*models.Review, error) {
	return m.CreateFunc(ctx, params)
}

func (m *mockReviewService) Update(ctx context.Context, params models.UpdateReviewParams) (*models.Review, error) {
	return m.UpdateFunc(ctx, params)
}

func (m *mockReviewService) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	return m.DeleteFunc(ctx, id, authorID)
}

type mockLikeService struct {
	likes  []models.Like
	err    error
	added  []string
	remove []string
}

func (m *mockLikeService) List(ctx context.Context) ([]models.Like, error) {
	return m.likes, m.err
}

func (m *mockLikeService) Add(ctx context.Context, userID uuid.UUID, itemID string) error {
	if _, ok := models.FindCatalogueItem(itemID); !ok {
		return services.ErrItemNotFound
	}
	m.added = append(m.added, itemID)
	return m.err
}

func (m *mockLikeService) Remove(ctx context.Context, userID uuid.UUID, itemID string) error {
	m.remove = append(m.remove, itemID)
	return m.err
}

func testUser() *models.User {
	return &models.User{ID: uuid.New(), FirstName: "Ana", LastName: "Pérez"}
}

func asUser(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(middleware.SetUserInContext(req.Context(), user, "tok"))
}
