package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/barberbook/internal/logging"
	"github.com/HammerMeetNail/barberbook/internal/models"
	"github.com/HammerMeetNail/barberbook/internal/services"
)

type LikeHandler struct {
	likes services.LikeServiceInterface
}

func NewLikeHandler(likes services.LikeServiceInterface) *LikeHandler {
	return &LikeHandler{likes: likes}
}

type LikesResponse struct {
	Likes []models.Like `json:"likes"`
}

func (h *LikeHandler) List(w http.ResponseWriter, r *http.Request) {
	likes, err := h.likes.List(r.Context())
	if err != nil {
		logging.Error("Error listing likes", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, LikesResponse{Likes: likes})
}

func (h *LikeHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, h.likes.Add, "Liked")
}

func (h *LikeHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, h.likes.Remove, "Unliked")
}

func (h *LikeHandler) write(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID uuid.UUID, itemID string) error, done string) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	err := op(r.Context(), user.ID, r.PathValue("itemId"))
	if errors.Is(err, services.ErrItemNotFound) {
		writeError(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		logging.Error("Error saving like", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: done})
}
