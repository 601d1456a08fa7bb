package views

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/HammerMeetNail/barberbook/internal/models"
)

type Viewport int

const (
	ViewportWide Viewport = iota
	ViewportNarrow
)

func ParseViewport(s string) Viewport {
	if strings.EqualFold(strings.TrimSpace(s), "narrow") {
		return ViewportNarrow
	}
	return ViewportWide
}

func (v Viewport) PageSize() int {
	if v == ViewportNarrow {
		return 3
	}
	return 6
}

func (v Viewport) String() string {
	if v == ViewportNarrow {
		return "narrow"
	}
	return "wide"
}

type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func ParseOrientation(s string) Orientation {
	if strings.EqualFold(strings.TrimSpace(s), "vertical") {
		return Vertical
	}
	return Horizontal
}

type CarouselState int

const (
	StateIdle CarouselState = iota
	StateAutoplaying
	StatePaused
)

func (s CarouselState) String() string {
	switch s {
	case StateAutoplaying:
		return "autoplaying"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// Chunk splits reviews into consecutive pages of at most size items.
func Chunk(reviews []models.Review, size int) [][]models.Review {
	if size <= 0 || len(reviews) == 0 {
		return nil
	}
	chunks := make([][]models.Review, 0, (len(reviews)+size-1)/size)
	for start := 0; start < len(reviews); start += size {
		end := min(start+size, len(reviews))
		page := make([]models.Review, end-start)
		copy(page, reviews[start:end])
		chunks = append(chunks, page)
	}
	return chunks
}

type CarouselConfig struct {
	Viewport    Viewport
	Orientation Orientation
	Interval    time.Duration
}

// Page is one rendered frame of the carousel.
type Page struct {
	Index       int
	Total       int
	Reviews     []models.Review
	State       CarouselState
	Orientation Orientation
	// ShowControls is false when there is nothing to navigate between.
	ShowControls bool
}

// Carousel pages a review sequence and rotates through the pages until the
// visitor navigates by hand. A manual move pauses it for good.
type Carousel struct {
	mu          sync.RWMutex
	items       []models.Review
	chunks      [][]models.Review
	index       int
	viewport    Viewport
	orientation Orientation
	interval    time.Duration
	paused      bool
	listeners   map[int]func(Page)
	nextID      int
}

func NewCarousel(cfg CarouselConfig) *Carousel {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	return &Carousel{
		viewport:    cfg.Viewport,
		orientation: cfg.Orientation,
		interval:    cfg.Interval,
		listeners:   make(map[int]func(Page)),
	}
}

// SetItems replaces the sequence being paged. Chunks are rebuilt and the
// cursor returns to the first page.
func (c *Carousel) SetItems(reviews []models.Review) {
	c.mu.Lock()
	c.items = make([]models.Review, len(reviews))
	copy(c.items, reviews)
	c.rechunkLocked()
	page := c.pageLocked()
	c.mu.Unlock()
	c.emit(page)
}

func (c *Carousel) SetViewport(v Viewport) {
	c.mu.Lock()
	if c.viewport == v {
		c.mu.Unlock()
		return
	}
	c.viewport = v
	c.rechunkLocked()
	page := c.pageLocked()
	c.mu.Unlock()
	c.emit(page)
}

func (c *Carousel) SetOrientation(o Orientation) {
	c.mu.Lock()
	c.orientation = o
	page := c.pageLocked()
	c.mu.Unlock()
	c.emit(page)
}

// Next is a manual move forward; it wraps and pauses autoplay.
func (c *Carousel) Next() Page {
	return c.move(1, true)
}

// Prev is a manual move backward; it wraps and pauses autoplay.
func (c *Carousel) Prev() Page {
	return c.move(-1, true)
}

// Tick advances one page if the carousel is autoplaying.
func (c *Carousel) Tick() Page {
	return c.move(1, false)
}

func (c *Carousel) Current() Page {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pageLocked()
}

func (c *Carousel) State() CarouselState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stateLocked()
}

func (c *Carousel) Chunks() [][]models.Review {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([][]models.Review, len(c.chunks))
	copy(out, c.chunks)
	return out
}

// OnChange registers fn for every page change.
func (c *Carousel) OnChange(fn func(Page)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Run drives autoplay until ctx is done.
func (c *Carousel) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}

func (c *Carousel) move(step int, manual bool) Page {
	c.mu.Lock()
	n := len(c.chunks)
	if n <= 1 {
		page := c.pageLocked()
		c.mu.Unlock()
		return page
	}
	if !manual && c.stateLocked() != StateAutoplaying {
		page := c.pageLocked()
		c.mu.Unlock()
		return page
	}
	if manual {
		c.paused = true
	}
	c.index = ((c.index+step)%n + n) % n
	page := c.pageLocked()
	c.mu.Unlock()

	c.emit(page)
	return page
}

func (c *Carousel) rechunkLocked() {
	c.chunks = Chunk(c.items, c.viewport.PageSize())
	c.index = 0
}

func (c *Carousel) stateLocked() CarouselState {
	if len(c.chunks) <= 1 {
		return StateIdle
	}
	if c.paused {
		return StatePaused
	}
	return StateAutoplaying
}

func (c *Carousel) pageLocked() Page {
	page := Page{
		Index:        c.index,
		Total:        len(c.chunks),
		State:        c.stateLocked(),
		Orientation:  c.orientation,
		ShowControls: len(c.chunks) > 1,
	}
	if c.index < len(c.chunks) {
		page.Reviews = c.chunks[c.index]
	}
	return page
}

func (c *Carousel) emit(page Page) {
	c.mu.RLock()
	listeners := make([]func(Page), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.RUnlock()
	for _, fn := range listeners {
		fn(page)
	}
}
