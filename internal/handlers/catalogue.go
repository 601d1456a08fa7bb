package handlers

import (
	"net/http"

	"github.com/HammerMeetNail/barberbook/internal/models"
)

type CatalogueResponse struct {
	Items []models.CatalogueItem `json:"items"`
}

func Catalogue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CatalogueResponse{Items: models.Catalogue})
}
