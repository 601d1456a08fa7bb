package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/barberbook/internal/models"
	"github.com/HammerMeetNail/barberbook/internal/services"
	"github.com/HammerMeetNail/barberbook/internal/testutil"
)

func TestAuthHandler_Signup(t *testing.T) {
	var got models.CreateUserParams
	users := &mockUserService{
		CreateFunc: func(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
			got = params
			return &models.User{ID: uuid.New(), FirstName: params.FirstName, LastName: params.LastName}, nil
		},
	}
	sessions := &mockSessionService{}
	handler := NewAuthHandler(users, sessions)

	rr := httptest.NewRecorder()
	handler.Signup(rr, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"phone": "5512345678", "password": "secreto", "first_name": " Ana ", "last_name": "Pérez",
	}))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := testutil.DecodeJSON[SessionResponse](t, rr)
	if resp.Token == "" || resp.User == nil || resp.User.DisplayName() != "Ana Pérez" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if got.FirstName != "Ana" {
		t.Fatalf("expected trimmed first name, got %q", got.FirstName)
	}
	if got.PasswordHash == "" || got.PasswordHash == "secreto" {
		t.Fatal("expected password to be hashed")
	}
	if !services.VerifyPassword(got.PasswordHash, "secreto") {
		t.Fatal("expected hash to verify")
	}
}

func TestAuthHandler_SignupValidation(t *testing.T) {
	handler := NewAuthHandler(&mockUserService{
		CreateFunc: func(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
			t.Fatal("invalid signups must not reach the service")
			return nil, nil
		},
	}, &mockSessionService{})

	tests := []struct {
		name string
		body map[string]string
		want string
	}{
		{"short phone", map[string]string{"phone": "551234", "password": "secreto", "first_name": "A", "last_name": "B"}, "phone must be exactly 10 characters"},
		{"letters in phone", map[string]string{"phone": "55123abc78", "password": "secreto", "first_name": "A", "last_name": "B"}, "phone must contain only digits"},
		{"short password", map[string]string{"phone": "5512345678", "password": "12345", "first_name": "A", "last_name": "B"}, "password must be at least 6 characters"},
		{"missing last name", map[string]string{"phone": "5512345678", "password": "secreto", "first_name": "A"}, "last_name is required"},
		{"blank first name", map[string]string{"phone": "5512345678", "password": "secreto", "first_name": "  ", "last_name": "B"}, "first_name and last_name are required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.Signup(rr, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/signup", tt.body))
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
			if resp := testutil.DecodeJSON[ErrorResponse](t, rr); resp.Error != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, resp.Error)
			}
		})
	}
}

func TestAuthHandler_SignupPhoneTaken(t *testing.T) {
	handler := NewAuthHandler(&mockUserService{
		CreateFunc: func(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
			return nil, services.ErrPhoneAlreadyExists
		},
	}, &mockSessionService{})

	rr := httptest.NewRecorder()
	handler.Signup(rr, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"phone": "5512345678", "password": "secreto", "first_name": "A", "last_name": "B",
	}))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	user := testUser()
	handler := NewAuthHandler(&mockUserService{
		AuthenticateFunc: func(ctx context.Context, phone, password string) (*models.User, error) {
			if phone == "5512345678" && password == "secreto" {
				return user, nil
			}
			return nil, services.ErrInvalidCredentials
		},
	}, &mockSessionService{})

	rr := httptest.NewRecorder()
	handler.Login(rr, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]string{"phone": "5512345678", "password": "secreto"}))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if resp := testutil.DecodeJSON[SessionResponse](t, rr); resp.User.ID != user.ID {
		t.Fatalf("unexpected user %+v", resp.User)
	}

	rr = httptest.NewRecorder()
	handler.Login(rr, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]string{"phone": "5512345678", "password": "nope"}))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthHandler_LoginSessionFailure(t *testing.T) {
	handler := NewAuthHandler(&mockUserService{
		AuthenticateFunc: func(ctx context.Context, phone, password string) (*models.User, error) {
			return testUser(), nil
		},
	}, &mockSessionService{createFn: func(ctx context.Context, userID uuid.UUID) (string, error) {
		return "", errors.New("redis down")
	}})

	rr := httptest.NewRecorder()
	handler.Login(rr, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]string{"phone": "5512345678", "password": "secreto"}))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestAuthHandler_RejectsUnknownFields(t *testing.T) {
	handler := NewAuthHandler(&mockUserService{}, &mockSessionService{})
	rr := httptest.NewRecorder()
	handler.Login(rr, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]string{"phone": "1", "password": "2", "admin": "yes"}))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestAuthHandler_LogoutAndMe(t *testing.T) {
	sessions := &mockSessionService{}
	handler := NewAuthHandler(&mockUserService{}, sessions)
	user := testUser()

	rr := httptest.NewRecorder()
	handler.Me(rr, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous me, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.Me(rr, asUser(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), user))
	if resp := testutil.DecodeJSON[UserResponse](t, rr); resp.User == nil || resp.User.ID != user.ID {
		t.Fatalf("unexpected me response %+v", resp)
	}

	rr = httptest.NewRecorder()
	handler.Logout(rr, asUser(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), user))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(sessions.deleted) != 1 || sessions.deleted[0] != "tok" {
		t.Fatalf("expected session deletion, got %v", sessions.deleted)
	}
}
