package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	sessionPrefix    = "session:"
	oauthStatePrefix = "oauth_state:"
	oauthStateTTL    = 10 * time.Minute
)

// SessionService issues opaque bearer tokens backed by redis.
type SessionService struct {
	kv  KeyValue
	ttl time.Duration
}

func NewSessionService(kv KeyValue, ttl time.Duration) *SessionService {
	return &SessionService{kv: kv, ttl: ttl}
}

func (s *SessionService) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := randomToken(32)
	if err != nil {
		return "", err
	}
	if err := s.kv.Set(ctx, sessionPrefix+token, userID.String(), s.ttl); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return token, nil
}

func (s *SessionService) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return uuid.Nil, ErrSessionNotFound
	}
	value, err := s.kv.Get(ctx, sessionPrefix+token)
	if errors.Is(err, ErrCacheMiss) {
		return uuid.Nil, ErrSessionNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("reading session: %w", err)
	}
	userID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, ErrSessionNotFound
	}
	return userID, nil
}

func (s *SessionService) Delete(ctx context.Context, token string) error {
	if err := s.kv.Del(ctx, sessionPrefix+token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// BeginOAuth records a fresh state/nonce pair for a provider redirect.
func (s *SessionService) BeginOAuth(ctx context.Context) (state, nonce string, err error) {
	if state, err = randomToken(16); err != nil {
		return "", "", err
	}
	if nonce, err = randomToken(16); err != nil {
		return "", "", err
	}
	if err := s.kv.Set(ctx, oauthStatePrefix+state, nonce, oauthStateTTL); err != nil {
		return "", "", fmt.Errorf("storing oauth state: %w", err)
	}
	return state, nonce, nil
}

// FinishOAuth consumes state and returns its nonce. A state is usable once.
func (s *SessionService) FinishOAuth(ctx context.Context, state string) (string, error) {
	nonce, err := s.kv.Take(ctx, oauthStatePrefix+state)
	if errors.Is(err, ErrCacheMiss) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading oauth state: %w", err)
	}
	return nonce, nil
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
