package engagement

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/barberbook/internal/logging"
	"github.com/HammerMeetNail/barberbook/internal/models"
)

// ReviewRepository owns the local review cache. Every write goes to the
// gateway first and is followed by a full reload; the cache is never patched
// in place.
type ReviewRepository struct {
	gateway Gateway
	session *SessionTracker
	logger  *logging.Logger

	mu        sync.RWMutex
	reviews   []models.Review
	loaded    bool
	listeners map[int]func([]models.Review)
	nextID    int

	// loadSeq numbers Load calls; applied is the newest one swapped in.
	loadSeq uint64
	applied uint64

	unsubscribe func()
}

func NewReviewRepository(gateway Gateway, session *SessionTracker, logger *logging.Logger) *ReviewRepository {
	if logger == nil {
		logger = logging.Default
	}
	r := &ReviewRepository{
		gateway:   gateway,
		session:   session,
		logger:    logger,
		listeners: make(map[int]func([]models.Review)),
	}
	// Ownership checks depend on who is signed in, so views re-derive on
	// every identity transition.
	r.unsubscribe = session.OnChange(func(models.Identity) {
		r.notify()
	})
	return r
}

// Load replaces the cache with the store's reviews, newest first. On failure
// the previous cache is kept and the error is logged and returned; callers may
// ignore it. When loads overlap, a result older than the one already applied
// is dropped.
func (r *ReviewRepository) Load(ctx context.Context) error {
	r.mu.Lock()
	r.loadSeq++
	seq := r.loadSeq
	r.mu.Unlock()

	reviews, err := r.gateway.FetchReviews(ctx)
	if err != nil {
		r.logger.Warn("Loading reviews failed; keeping cached reviews", map[string]interface{}{
			"error": err.Error(),
		})
		return remoteFailure("loading reviews", err)
	}
	sortNewestFirst(reviews)

	r.mu.Lock()
	if seq < r.applied {
		r.mu.Unlock()
		return nil
	}
	r.applied = seq
	r.reviews = reviews
	r.loaded = true
	r.mu.Unlock()

	r.notify()
	return nil
}

// Reviews returns a copy of the cache, newest first.
func (r *ReviewRepository) Reviews() []models.Review {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Review, len(r.reviews))
	copy(out, r.reviews)
	return out
}

func (r *ReviewRepository) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

func (r *ReviewRepository) Find(id uuid.UUID) (models.Review, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, review := range r.reviews {
		if review.ID == id {
			return review, true
		}
	}
	return models.Review{}, false
}

// CanEdit reports whether the current identity may edit or delete id.
func (r *ReviewRepository) CanEdit(id uuid.UUID) bool {
	review, ok := r.Find(id)
	return ok && r.session.Current().Is(review.AuthorID)
}

// OwnedCount counts cached reviews owned by the current identity. It is a
// display hint only; Create asks the store.
func (r *ReviewRepository) OwnedCount() int {
	identity := r.session.Current()
	if !identity.IsAuthenticated() {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, review := range r.reviews {
		if review.AuthorID == identity.UserID {
			n++
		}
	}
	return n
}

// OnChange registers fn to receive the cache after every reload and identity
// transition.
func (r *ReviewRepository) OnChange(fn func([]models.Review)) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

func (r *ReviewRepository) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
}

func (r *ReviewRepository) Create(ctx context.Context, rating int, comment string) (uuid.UUID, error) {
	identity := r.session.Current()
	if !identity.IsAuthenticated() {
		return uuid.Nil, ErrUnauthenticated
	}
	if verr := CheckReview(rating, comment); verr != nil {
		return uuid.Nil, verr
	}

	// The cache may be stale, so the quota is counted by the store.
	owned, err := r.gateway.CountReviewsByAuthor(ctx, identity.UserID)
	if err != nil {
		return uuid.Nil, remoteFailure("counting reviews", err)
	}
	if owned >= models.MaxReviewsPerUser {
		return uuid.Nil, ErrQuotaExceeded
	}

	id, err := r.gateway.InsertReview(ctx, identity.UserID, rating, strings.TrimSpace(comment))
	if err != nil {
		return uuid.Nil, remoteFailure("inserting review", err)
	}

	r.reload(ctx)
	return id, nil
}

func (r *ReviewRepository) Update(ctx context.Context, id uuid.UUID, rating int, comment string) error {
	if err := r.authorize(id); err != nil {
		return err
	}
	if verr := CheckReview(rating, comment); verr != nil {
		return verr
	}

	if err := r.gateway.UpdateReview(ctx, id, rating, strings.TrimSpace(comment)); err != nil {
		return remoteFailure("updating review", err)
	}

	r.reload(ctx)
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.authorize(id); err != nil {
		return err
	}

	if err := r.gateway.DeleteReview(ctx, id); err != nil {
		return remoteFailure("deleting review", err)
	}

	r.reload(ctx)
	return nil
}

func (r *ReviewRepository) authorize(id uuid.UUID) error {
	identity := r.session.Current()
	if !identity.IsAuthenticated() {
		return ErrUnauthenticated
	}
	review, ok := r.Find(id)
	if !ok {
		return ErrReviewNotFound
	}
	if review.AuthorID != identity.UserID {
		return ErrNotOwner
	}
	return nil
}

// reload reconciles after a successful write. A failed reload leaves the
// stale cache in place; the write itself already succeeded.
func (r *ReviewRepository) reload(ctx context.Context) {
	_ = r.Load(ctx)
}

func (r *ReviewRepository) notify() {
	r.mu.RLock()
	snapshot := make([]models.Review, len(r.reviews))
	copy(snapshot, r.reviews)
	listeners := make([]func([]models.Review), 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.mu.RUnlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

func sortNewestFirst(reviews []models.Review) {
	// Stable so equal timestamps keep the store's order.
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
}
