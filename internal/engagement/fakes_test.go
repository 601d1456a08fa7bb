package engagement

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/barberbook/internal/models"
)

// fakeStore is an in-memory Gateway that records every call.
type fakeStore struct {
	mu      sync.Mutex
	reviews []models.Review
	likes   map[models.Like]struct{}
	names   map[uuid.UUID]string
	calls   []string
	clock   time.Time

	fetchErr  error
	insertErr error
	countErr  error
	likeErr   error
	// likeGate, when set, blocks like writes until closed.
	likeGate chan struct{}
	// fetchGates hold back successive FetchReviews answers, one gate per
	// call, after the snapshot has been taken.
	fetchGates []chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		likes: make(map[models.Like]struct{}),
		names: make(map[uuid.UUID]string),
		clock: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeStore) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeStore) seedReview(author uuid.UUID, rating int, comment string) models.Review {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = f.clock.Add(time.Minute)
	r := models.Review{
		ID:                uuid.New(),
		AuthorID:          author,
		Rating:            rating,
		Comment:           comment,
		CreatedAt:         f.clock,
		AuthorDisplayName: f.names[author],
	}
	f.reviews = append(f.reviews, r)
	return r
}

func (f *fakeStore) FetchReviews(ctx context.Context) ([]models.Review, error) {
	f.mu.Lock()
	f.record("FetchReviews")
	if f.fetchErr != nil {
		f.mu.Unlock()
		return nil, f.fetchErr
	}
	out := make([]models.Review, len(f.reviews))
	copy(out, f.reviews)
	var gate chan struct{}
	if len(f.fetchGates) > 0 {
		gate, f.fetchGates = f.fetchGates[0], f.fetchGates[1:]
	}
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) InsertReview(ctx context.Context, authorID uuid.UUID, rating int, comment string) (uuid.UUID, error) {
	f.mu.Lock()
	f.record("InsertReview")
	if f.insertErr != nil {
		f.mu.Unlock()
		return uuid.Nil, f.insertErr
	}
	f.mu.Unlock()
	return f.seedReview(authorID, rating, comment).ID, nil
}

func (f *fakeStore) UpdateReview(ctx context.Context, id uuid.UUID, rating int, comment string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateReview")
	for i := range f.reviews {
		if f.reviews[i].ID == id {
			f.reviews[i].Rating = rating
			f.reviews[i].Comment = comment
			return nil
		}
	}
	return errors.New("review not found")
}

func (f *fakeStore) DeleteReview(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteReview")
	for i := range f.reviews {
		if f.reviews[i].ID == id {
			f.reviews = append(f.reviews[:i], f.reviews[i+1:]...)
			return nil
		}
	}
	return errors.New("review not found")
}

func (f *fakeStore) CountReviewsByAuthor(ctx context.Context, authorID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CountReviewsByAuthor")
	if f.countErr != nil {
		return 0, f.countErr
	}
	n := 0
	for _, r := range f.reviews {
		if r.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) FetchLikes(ctx context.Context) ([]models.Like, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FetchLikes")
	out := make([]models.Like, 0, len(f.likes))
	for like := range f.likes {
		out = append(out, like)
	}
	return out, nil
}

func (f *fakeStore) putLike(like models.Like) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.likes[like] = struct{}{}
}

func (f *fakeStore) countLikes(itemID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for like := range f.likes {
		if like.ItemID == itemID {
			n++
		}
	}
	return n
}

func (f *fakeStore) InsertLike(ctx context.Context, userID uuid.UUID, itemID string) error {
	return f.writeLike("InsertLike", models.Like{UserID: userID, ItemID: itemID}, true)
}

func (f *fakeStore) DeleteLike(ctx context.Context, userID uuid.UUID, itemID string) error {
	return f.writeLike("DeleteLike", models.Like{UserID: userID, ItemID: itemID}, false)
}

func (f *fakeStore) writeLike(call string, like models.Like, add bool) error {
	f.mu.Lock()
	gate := f.likeGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(call)
	if f.likeErr != nil {
		return f.likeErr
	}
	if add {
		f.likes[like] = struct{}{}
	} else {
		delete(f.likes, like)
	}
	return nil
}

// fakeAuth is an AuthSource whose session is set by the test.
type fakeAuth struct {
	mu        sync.Mutex
	identity  models.Identity
	err       error
	listeners []func(models.Identity)
}

func (a *fakeAuth) CurrentSession(ctx context.Context) (models.Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.identity, a.err
}

func (a *fakeAuth) OnAuthChange(fn func(models.Identity)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
	return func() {}
}

func (a *fakeAuth) signIn(identity models.Identity) {
	a.mu.Lock()
	a.identity = identity
	listeners := append([]func(models.Identity){}, a.listeners...)
	a.mu.Unlock()
	for _, fn := range listeners {
		fn(identity)
	}
}

func (a *fakeAuth) signOut() {
	a.signIn(models.Anonymous)
}

func newUser(name string) models.Identity {
	return models.Identity{UserID: uuid.New(), DisplayName: name}
}

func countCalls(calls []string, name string) int {
	n := 0
	for _, c := range calls {
		if c == name {
			n++
		}
	}
	return n
}
