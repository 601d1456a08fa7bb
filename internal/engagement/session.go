package engagement

import (
	"context"
	"sync"

	"github.com/HammerMeetNail/barberbook/internal/logging"
	"github.com/HammerMeetNail/barberbook/internal/models"
)

// SessionTracker holds the identity every other component acts as and
// announces transitions.
type SessionTracker struct {
	auth   AuthSource
	logger *logging.Logger

	mu        sync.RWMutex
	current   models.Identity
	listeners map[int]func(models.Identity)
	nextID    int

	unsubscribe func()
}

func NewSessionTracker(auth AuthSource, logger *logging.Logger) *SessionTracker {
	if logger == nil {
		logger = logging.Default
	}
	t := &SessionTracker{
		auth:      auth,
		logger:    logger,
		listeners: make(map[int]func(models.Identity)),
	}
	t.unsubscribe = auth.OnAuthChange(t.set)
	return t
}

// Refresh re-reads the collaborator's session. Errors degrade to anonymous.
func (t *SessionTracker) Refresh(ctx context.Context) models.Identity {
	identity, err := t.auth.CurrentSession(ctx)
	if err != nil {
		t.logger.Warn("Reading session failed; treating visitor as anonymous", map[string]interface{}{
			"error": err.Error(),
		})
		identity = models.Anonymous
	}
	t.set(identity)
	return identity
}

func (t *SessionTracker) Current() models.Identity {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// OnChange registers fn for identity transitions.
func (t *SessionTracker) OnChange(fn func(models.Identity)) (unsubscribe func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.listeners, id)
	}
}

func (t *SessionTracker) Close() {
	if t.unsubscribe != nil {
		t.unsubscribe()
	}
}

func (t *SessionTracker) set(identity models.Identity) {
	t.mu.Lock()
	if t.current == identity {
		t.mu.Unlock()
		return
	}
	t.current = identity
	listeners := make([]func(models.Identity), 0, len(t.listeners))
	for _, fn := range t.listeners {
		listeners = append(listeners, fn)
	}
	t.mu.Unlock()

	t.logger.Debug("Identity changed", map[string]interface{}{
		"authenticated": identity.IsAuthenticated(),
	})
	for _, fn := range listeners {
		fn(identity)
	}
}
