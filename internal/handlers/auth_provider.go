package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/HammerMeetNail/barberbook/internal/logging"
	"github.com/HammerMeetNail/barberbook/internal/services"
)

// ProviderAuthHandler runs the browser leg of an OIDC sign-in. The callback
// answers with a session token the terminal client adopts.
type ProviderAuthHandler struct {
	providerAuth services.ProviderAuthServiceInterface
	sessions     services.SessionServiceInterface
	providers    map[string]services.OAuthProvider
}

func NewProviderAuthHandler(providerAuth services.ProviderAuthServiceInterface, sessions services.SessionServiceInterface, providers map[services.Provider]services.OAuthProvider) *ProviderAuthHandler {
	normalized := make(map[string]services.OAuthProvider, len(providers))
	for key, provider := range providers {
		normalized[strings.ToLower(string(key))] = provider
	}
	return &ProviderAuthHandler{
		providerAuth: providerAuth,
		sessions:     sessions,
		providers:    normalized,
	}
}

func (h *ProviderAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	provider := h.providers[strings.ToLower(r.PathValue("provider"))]
	if provider == nil {
		http.NotFound(w, r)
		return
	}

	state, nonce, err := h.sessions.BeginOAuth(r.Context())
	if err != nil {
		logging.Error("Error starting provider auth", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Failed to start provider auth")
		return
	}

	http.Redirect(w, r, provider.AuthCodeURL(state, nonce), http.StatusFound)
}

func (h *ProviderAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider := h.providers[strings.ToLower(r.PathValue("provider"))]
	if provider == nil {
		http.NotFound(w, r)
		return
	}

	query := r.URL.Query()
	if providerErr := query.Get("error"); providerErr != "" {
		writeError(w, http.StatusBadRequest, "Provider sign-in was cancelled")
		return
	}
	code, state := query.Get("code"), query.Get("state")
	if code == "" || state == "" {
		writeError(w, http.StatusBadRequest, "Missing code or state")
		return
	}

	nonce, err := h.sessions.FinishOAuth(r.Context(), state)
	if errors.Is(err, services.ErrSessionNotFound) {
		writeError(w, http.StatusBadRequest, "Sign-in expired, please start again")
		return
	}
	if err != nil {
		logging.Error("Error reading provider state", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	claims, err := provider.ExchangeAndVerify(r.Context(), code, nonce)
	if err != nil {
		logging.Warn("Provider exchange failed", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusUnauthorized, "Provider sign-in failed")
		return
	}

	user, err := h.providerAuth.SignInWithProvider(r.Context(), claims)
	if errors.Is(err, services.ErrInvalidProviderClaims) {
		writeError(w, http.StatusUnauthorized, "Provider sign-in failed")
		return
	}
	if err != nil {
		logging.Error("Provider link failed", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		logging.Error("Provider session failed", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Token: token, User: user})
}
