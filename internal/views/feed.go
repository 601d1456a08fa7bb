package views

import (
	"sync"

	"github.com/HammerMeetNail/barberbook/internal/models"
)

// Summary is the aggregate block shown above the review carousel.
type Summary struct {
	Total    int
	Average  float64
	ByRating map[int]int
	Filter   RatingFilter
	Matching int
}

// Feed owns the rating filter and re-derives the filtered sequence and the
// carousel pages whenever the source reviews or the filter change.
type Feed struct {
	carousel *Carousel

	mu      sync.RWMutex
	source  []models.Review
	filter  RatingFilter
	visible []models.Review
}

func NewFeed(carousel *Carousel) *Feed {
	return &Feed{carousel: carousel}
}

// Update is wired to the review repository's change notifications.
func (f *Feed) Update(reviews []models.Review) {
	f.mu.Lock()
	f.source = make([]models.Review, len(reviews))
	copy(f.source, reviews)
	f.visible = Filter(f.source, f.filter)
	visible := f.visible
	f.mu.Unlock()

	f.carousel.SetItems(visible)
}

func (f *Feed) SetFilter(filter RatingFilter) {
	f.mu.Lock()
	f.filter = filter
	f.visible = Filter(f.source, filter)
	visible := f.visible
	f.mu.Unlock()

	f.carousel.SetItems(visible)
}

func (f *Feed) Filter() RatingFilter {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter
}

func (f *Feed) Visible() []models.Review {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.Review, len(f.visible))
	copy(out, f.visible)
	return out
}

func (f *Feed) Summary() Summary {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return Summary{
		Total:    len(f.source),
		Average:  AverageRating(f.source),
		ByRating: CountByRating(f.source),
		Filter:   f.filter,
		Matching: len(f.visible),
	}
}

func (f *Feed) Carousel() *Carousel {
	return f.carousel
}
