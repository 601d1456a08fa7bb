package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/barberbook/internal/logging"
	"github.com/HammerMeetNail/barberbook/internal/models"
	"github.com/HammerMeetNail/barberbook/internal/services"
)

type ReviewHandler struct {
	reviews services.ReviewServiceInterface
}

func NewReviewHandler(reviews services.ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// ReviewRequest leaves rule checks to the service so API callers and the
// client see the same messages.
type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ReviewsResponse struct {
	Reviews []models.Review `json:"reviews"`
}

type ReviewResponse struct {
	Review *models.Review `json:"review"`
}

type CountResponse struct {
	Count int `json:"count"`
}

func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.List(r.Context())
	if err != nil {
		logging.Error("Error listing reviews", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, ReviewsResponse{Reviews: reviews})
}

func (h *ReviewHandler) Count(w http.ResponseWriter, r *http.Request) {
	authorID, err := uuid.Parse(r.URL.Query().Get("author"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid author ID")
		return
	}
	count, err := h.reviews.CountByAuthor(r.Context(), authorID)
	if err != nil {
		logging.Error("Error counting reviews", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: count})
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req ReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.reviews.Create(r.Context(), models.CreateReviewParams{
		AuthorID: user.ID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		h.writeServiceError(w, "Error creating review", err)
		return
	}
	writeJSON(w, http.StatusCreated, ReviewResponse{Review: review})
}

func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var req ReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.reviews.Update(r.Context(), models.UpdateReviewParams{
		ID:       id,
		AuthorID: user.ID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		h.writeServiceError(w, "Error updating review", err)
		return
	}
	writeJSON(w, http.StatusOK, ReviewResponse{Review: review})
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	if err := h.reviews.Delete(r.Context(), id, user.ID); err != nil {
		h.writeServiceError(w, "Error deleting review", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Review deleted"})
}

func (h *ReviewHandler) writeServiceError(w http.ResponseWriter, logMsg string, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidReview):
		msg := strings.TrimPrefix(err.Error(), services.ErrInvalidReview.Error()+": ")
		writeError(w, http.StatusBadRequest, msg)
	case errors.Is(err, services.ErrReviewQuotaExceeded):
		writeError(w, http.StatusConflict, "Review limit reached")
	case errors.Is(err, services.ErrNotReviewAuthor):
		writeError(w, http.StatusForbidden, "Only the author can change this review")
	case errors.Is(err, services.ErrReviewNotFound):
		writeError(w, http.StatusNotFound, "Review not found")
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusUnauthorized, "Authentication required")
	default:
		logging.Error(logMsg, map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
