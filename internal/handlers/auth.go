package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/HammerMeetNail/barberbook/internal/logging"
	"github.com/HammerMeetNail/barberbook/internal/middleware"
	"github.com/HammerMeetNail/barberbook/internal/models"
	"github.com/HammerMeetNail/barberbook/internal/services"
)

type AuthHandler struct {
	users    services.UserServiceInterface
	sessions services.SessionServiceInterface
}

func NewAuthHandler(users services.UserServiceInterface, sessions services.SessionServiceInterface) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions}
}

type SignupRequest struct {
	Phone     string `json:"phone" validate:"required,len=10,numeric"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

type LoginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type UserResponse struct {
	User *models.User `json:"user"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.FirstName == "" || req.LastName == "" {
		writeError(w, http.StatusBadRequest, "first_name and last_name are required")
		return
	}

	hash, err := services.HashPassword(req.Password)
	if err != nil {
		logging.Error("Error hashing password", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := h.users.Create(r.Context(), models.CreateUserParams{
		Phone:        req.Phone,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	switch {
	case errors.Is(err, services.ErrPhoneAlreadyExists):
		writeError(w, http.StatusConflict, "Phone already registered")
		return
	case errors.Is(err, services.ErrInvalidPhone), errors.Is(err, services.ErrInvalidName):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		logging.Error("Error creating user", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.startSession(w, r, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Phone, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid phone or password")
		return
	}
	if err != nil {
		logging.Error("Error authenticating user", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.startSession(w, r, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.GetTokenFromContext(r.Context()); token != "" {
		if err := h.sessions.Delete(r.Context(), token); err != nil {
			logging.Warn("Error deleting session", map[string]interface{}{"error": err.Error()})
		}
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Signed out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{User: user})
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		logging.Error("Error creating session", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, status, SessionResponse{Token: token, User: user})
}
