package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/barberbook/internal/models"
	"github.com/HammerMeetNail/barberbook/internal/services"
)

type stubSessions struct {
	services.SessionServiceInterface
	tokens map[string]uuid.UUID
	err    error
}

func (s *stubSessions) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	if s.err != nil {
		return uuid.Nil, s.err
	}
	id, ok := s.tokens[token]
	if !ok {
		return uuid.Nil, services.ErrSessionNotFound
	}
	return id, nil
}

type stubUsers struct {
	services.UserServiceInterface
	users map[uuid.UUID]*models.User
}

func (s *stubUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	return user, nil
}

func newAuthFixture() (*AuthMiddleware, *models.User) {
	user := &models.User{ID: uuid.New(), FirstName: "Ana", LastName: "Pérez"}
	sessions := &stubSessions{tokens: map[string]uuid.UUID{"good": user.ID, "orphan": uuid.New()}}
	users := &stubUsers{users: map[uuid.UUID]*models.User{user.ID: user}}
	return NewAuthMiddleware(sessions, users), user
}

func TestAuthenticate_ResolvesBearerToken(t *testing.T) {
	mw, user := newAuthFixture()

	var got *models.User
	var token string
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUserFromContext(r.Context())
		token = GetTokenFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "bearer good")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.ID != user.ID {
		t.Fatalf("expected user in context, got %+v", got)
	}
	if token != "good" {
		t.Fatalf("expected token in context, got %q", token)
	}
}

func TestAuthenticate_AnonymousFallthrough(t *testing.T) {
	mw, _ := newAuthFixture()

	for _, header := range []string{"", "Basic abc", "Bearer unknown", "Bearer orphan"} {
		called := false
		handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			if GetUserFromContext(r.Context()) != nil {
				t.Fatalf("header %q: expected anonymous request", header)
			}
		}))
		req := httptest.NewRequest(http.MethodGet, "/api/reviews", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if !called {
			t.Fatalf("header %q: expected next handler to run", header)
		}
	}
}

func TestAuthenticate_SessionStoreErrorIsAnonymous(t *testing.T) {
	mw := NewAuthMiddleware(&stubSessions{err: errors.New("redis down")}, &stubUsers{})
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserFromContext(r.Context()) != nil {
			t.Fatal("expected anonymous request")
		}
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestRequireAuth(t *testing.T) {
	mw, user := newAuthFixture()
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reviews", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/reviews", nil)
	req = req.WithContext(SetUserInContext(req.Context(), user, "good"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
