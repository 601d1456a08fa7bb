package engagement

import (
	"context"
	"sync"

	"github.com/HammerMeetNail/barberbook/internal/logging"
	"github.com/HammerMeetNail/barberbook/internal/models"
)

// LikeEngine keeps the local like set and applies toggles before the store
// confirms them. Counts are derived from the set, so a user's membership and
// an item's count always move together. A failed remote call rolls the local
// change back.
type LikeEngine struct {
	gateway Gateway
	session *SessionTracker
	logger  *logging.Logger

	mu        sync.RWMutex
	likes     map[models.Like]struct{}
	listeners map[int]func(models.LikeState)
	nextID    int
	// pending maps each in-flight pair to its optimistic membership.
	pending map[models.Like]bool

	inflight sync.WaitGroup
}

// PendingToggle is a toggle whose local effect is already visible. Wait
// blocks until the store has answered.
type PendingToggle struct {
	State models.LikeState

	done chan struct{}
	err  error
}

func (p *PendingToggle) Done() <-chan struct{} {
	return p.done
}

func (p *PendingToggle) Wait() error {
	<-p.done
	return p.err
}

func NewLikeEngine(gateway Gateway, session *SessionTracker, logger *logging.Logger) *LikeEngine {
	if logger == nil {
		logger = logging.Default
	}
	return &LikeEngine{
		gateway:   gateway,
		session:   session,
		logger:    logger,
		likes:     make(map[models.Like]struct{}),
		pending:   make(map[models.Like]bool),
		listeners: make(map[int]func(models.LikeState)),
	}
}

// Load replaces the local like set with the store's. Pairs with a toggle
// still in flight keep their optimistic membership; every other pair follows
// the store.
func (e *LikeEngine) Load(ctx context.Context) error {
	likes, err := e.gateway.FetchLikes(ctx)
	if err != nil {
		e.logger.Warn("Loading likes failed; keeping cached likes", map[string]interface{}{
			"error": err.Error(),
		})
		return remoteFailure("loading likes", err)
	}

	e.mu.Lock()
	fresh := make(map[models.Like]struct{}, len(likes))
	for _, like := range likes {
		fresh[like] = struct{}{}
	}
	for like, liked := range e.pending {
		if liked {
			fresh[like] = struct{}{}
		} else {
			delete(fresh, like)
		}
	}
	e.likes = fresh
	e.mu.Unlock()
	return nil
}

// State reports the current identity's view of itemID.
func (e *LikeEngine) State(itemID string) models.LikeState {
	identity := e.session.Current()
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stateLocked(identity, itemID)
}

// Pending reports whether the current identity has a toggle on itemID in
// flight.
func (e *LikeEngine) Pending(itemID string) bool {
	identity := e.session.Current()
	if !identity.IsAuthenticated() {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.pending[models.Like{UserID: identity.UserID, ItemID: itemID}]
	return ok
}

// OnChange registers fn for every local change to an item's state,
// optimistic or rolled back.
func (e *LikeEngine) OnChange(fn func(models.LikeState)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// Toggle flips the current identity's like on itemID locally and sends the
// change to the store in the background. A second toggle by the same
// identity on the same item is refused until the first has settled.
func (e *LikeEngine) Toggle(ctx context.Context, itemID string) (*PendingToggle, error) {
	identity := e.session.Current()
	if !identity.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	key := models.Like{UserID: identity.UserID, ItemID: itemID}

	e.mu.Lock()
	if _, inFlight := e.pending[key]; inFlight {
		e.mu.Unlock()
		return nil, ErrTogglePending
	}
	_, wasLiked := e.likes[key]
	if wasLiked {
		delete(e.likes, key)
	} else {
		e.likes[key] = struct{}{}
	}
	e.pending[key] = !wasLiked
	state := e.stateLocked(identity, itemID)
	e.mu.Unlock()

	e.emit(state)

	p := &PendingToggle{State: state, done: make(chan struct{})}
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		defer close(p.done)
		p.err = e.settle(context.WithoutCancel(ctx), identity, key, wasLiked)
	}()
	return p, nil
}

// Wait blocks until every in-flight toggle has settled.
func (e *LikeEngine) Wait() {
	e.inflight.Wait()
}

func (e *LikeEngine) settle(ctx context.Context, identity models.Identity, key models.Like, wasLiked bool) error {
	var err error
	if wasLiked {
		err = e.gateway.DeleteLike(ctx, key.UserID, key.ItemID)
	} else {
		err = e.gateway.InsertLike(ctx, key.UserID, key.ItemID)
	}

	e.mu.Lock()
	delete(e.pending, key)
	if err != nil {
		if wasLiked {
			e.likes[key] = struct{}{}
		} else {
			delete(e.likes, key)
		}
	}
	state := e.stateLocked(e.session.Current(), key.ItemID)
	e.mu.Unlock()

	if err != nil {
		e.logger.Warn("Like change rejected by store; rolled back", map[string]interface{}{
			"item_id": key.ItemID,
			"unlike":  wasLiked,
			"error":   err.Error(),
		})
		e.emit(state)
		return remoteFailure("saving like", err)
	}
	return nil
}

func (e *LikeEngine) stateLocked(identity models.Identity, itemID string) models.LikeState {
	state := models.LikeState{ItemID: itemID}
	for like := range e.likes {
		if like.ItemID != itemID {
			continue
		}
		state.Count++
		if identity.IsAuthenticated() && like.UserID == identity.UserID {
			state.Liked = true
		}
	}
	return state
}

func (e *LikeEngine) emit(state models.LikeState) {
	e.mu.RLock()
	listeners := make([]func(models.LikeState), 0, len(e.listeners))
	for _, fn := range e.listeners {
		listeners = append(listeners, fn)
	}
	e.mu.RUnlock()

	for _, fn := range listeners {
		fn(state)
	}
}

