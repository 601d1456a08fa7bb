// Package oidctest runs an in-process OpenID Connect issuer for tests of the
// provider sign-in flow. It serves discovery, a JWKS and the token endpoint;
// authorization codes are minted directly with Grant.
package oidctest

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
)

// Claims is the person the next id token describes.
type Claims struct {
	Subject    string
	Email      string
	GivenName  string
	FamilyName string
	Name       string
}

type grant struct {
	claims Claims
	nonce  string
}

type Issuer struct {
	server   *httptest.Server
	clientID string
	signer   jose.Signer
	keys     jose.JSONWebKeySet

	mu     sync.Mutex
	codes  map[string]grant
	issuer string
}

// NewIssuer starts an issuer that signs tokens for clientID. It is closed
// when the test ends.
func NewIssuer(t testing.TB, clientID string) *Issuer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating signing key: %v", err)
	}
	kid := randomHex(t, 8)

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.RS256, Key: jose.JSONWebKey{Key: key, KeyID: kid}},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		t.Fatalf("creating signer: %v", err)
	}

	i := &Issuer{
		clientID: clientID,
		signer:   signer,
		keys: jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{
			Key:       key.Public(),
			KeyID:     kid,
			Algorithm: string(jose.RS256),
			Use:       "sig",
		}}},
		codes: make(map[string]grant),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", i.handleDiscovery)
	mux.HandleFunc("GET /keys", i.handleKeys)
	mux.HandleFunc("POST /token", i.handleToken)
	i.server = httptest.NewServer(mux)
	i.issuer = i.server.URL
	t.Cleanup(i.server.Close)
	return i
}

func (i *Issuer) URL() string {
	return i.issuer
}

// Grant mints a one-time authorization code that exchanges for an id token
// carrying claims and nonce.
func (i *Issuer) Grant(t testing.TB, claims Claims, nonce string) string {
	t.Helper()
	code := randomHex(t, 16)
	i.mu.Lock()
	i.codes[code] = grant{claims: claims, nonce: nonce}
	i.mu.Unlock()
	return code
}

func (i *Issuer) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"issuer":                                i.issuer,
		"authorization_endpoint":                i.issuer + "/authorize",
		"token_endpoint":                        i.issuer + "/token",
		"jwks_uri":                              i.issuer + "/keys",
		"response_types_supported":              []string{"code"},
		"subject_types_supported":               []string{"public"},
		"id_token_signing_alg_values_supported": []string{string(jose.RS256)},
	})
}

func (i *Issuer) handleKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, i.keys)
}

func (i *Issuer) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.Form.Get("grant_type") != "authorization_code" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		return
	}

	code := r.Form.Get("code")
	i.mu.Lock()
	g, ok := i.codes[code]
	delete(i.codes, code)
	i.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
		return
	}

	idToken, err := i.sign(g)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server_error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": "access-" + code,
		"token_type":   "Bearer",
		"expires_in":   600,
		"id_token":     idToken,
	})
}

func (i *Issuer) sign(g grant) (string, error) {
	now := time.Now()
	payload, err := json.Marshal(map[string]any{
		"iss":         i.issuer,
		"sub":         g.claims.Subject,
		"aud":         i.clientID,
		"iat":         now.Unix(),
		"exp":         now.Add(10 * time.Minute).Unix(),
		"nonce":       g.nonce,
		"email":       g.claims.Email,
		"given_name":  g.claims.GivenName,
		"family_name": g.claims.FamilyName,
		"name":        g.claims.Name,
	})
	if err != nil {
		return "", err
	}
	jws, err := i.signer.Sign(payload)
	if err != nil {
		return "", err
	}
	return jws.CompactSerialize()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func randomHex(t testing.TB, n int) string {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("reading random bytes: %v", err)
	}
	return hex.EncodeToString(b)
}
