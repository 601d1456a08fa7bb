package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/HammerMeetNail/barberbook/internal/models"
	"github.com/HammerMeetNail/barberbook/internal/views"
)

const helpText = `Commands:
  signup <phone> <password> <first> <last>   create an account
  login <phone> <password>                   sign in
  token <session token>                      adopt a token from the browser sign-in
  logout | whoami
  page | next | prev                         show or move through the review carousel
  filter <all|1-5>                           show only reviews with that rating
  stats | list                               rating summary, numbered review list
  review <1-5> <comment>                     publish a review
  edit <n> <1-5> <comment> | delete <n>      change one of your reviews (n from list)
  items | like <id>                          catalogue and like toggle
  viewport <narrow|wide>
  orientation <horizontal|vertical>
  reload | help | quit`

var (
	accent  = color.New(color.FgCyan, color.Bold).SprintFunc()
	faint   = color.New(color.Faint).SprintFunc()
	stars   = color.New(color.FgYellow).SprintFunc()
	heart   = color.New(color.FgRed).SprintFunc()
	success = color.New(color.FgGreen).SprintFunc()
	failure = color.New(color.FgRed, color.Bold).SprintFunc()
)

// console serialises writes from the command loop and from listeners that
// fire on background goroutines.
type console struct {
	mu  sync.Mutex
	out io.Writer
}

func newConsole(out io.Writer) *console {
	return &console{out: out}
}

func (c *console) print(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}

func (c *console) prompt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, "> ")
}

func renderStars(rating int) string {
	rating = max(0, min(rating, models.MaxRating))
	return stars(strings.Repeat("★", rating)) + faint(strings.Repeat("☆", models.MaxRating-rating))
}

func renderReview(r models.Review, mine bool) string {
	author := r.AuthorDisplayName
	if mine {
		author += " " + accent("(you)")
	}
	return fmt.Sprintf("%s  %s  %s\n    %s", renderStars(r.Rating), author, faint(r.CreatedAt.Format("2006-01-02")), r.Comment)
}

func renderPage(p views.Page, canEdit func(uuid.UUID) bool) string {
	if p.Total == 0 {
		return faint("No reviews yet.")
	}
	var b strings.Builder
	header := fmt.Sprintf("Reviews page %d/%d", p.Index+1, p.Total)
	if p.ShowControls {
		header += "  " + faint("["+p.State.String()+", prev/next to browse]")
	}
	b.WriteString(accent(header))

	if p.Orientation == views.Vertical {
		for _, r := range p.Reviews {
			b.WriteString("\n  " + renderReview(r, canEdit(r.ID)))
		}
		return b.String()
	}
	cells := make([]string, len(p.Reviews))
	for i, r := range p.Reviews {
		cells[i] = renderStars(r.Rating) + " " + r.AuthorDisplayName
	}
	b.WriteString("\n  " + strings.Join(cells, faint("  |  ")))
	return b.String()
}

func renderList(reviews []models.Review, canEdit func(uuid.UUID) bool) string {
	if len(reviews) == 0 {
		return faint("No reviews match the current filter.")
	}
	lines := make([]string, len(reviews))
	for i, r := range reviews {
		lines[i] = fmt.Sprintf("#%d %s", i+1, renderReview(r, canEdit(r.ID)))
	}
	return strings.Join(lines, "\n")
}

func renderSummary(s views.Summary) string {
	var b strings.Builder
	if s.Total == 0 {
		b.WriteString("No ratings yet")
	} else {
		fmt.Fprintf(&b, "Average %.1f from %d reviews", s.Average, s.Total)
	}
	ratings := make([]int, 0, len(s.ByRating))
	for r := range s.ByRating {
		ratings = append(ratings, r)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ratings)))
	for _, r := range ratings {
		fmt.Fprintf(&b, "\n  %s %d", renderStars(r), s.ByRating[r])
	}
	fmt.Fprintf(&b, "\nFilter: %s (%d shown)", s.Filter, s.Matching)
	return b.String()
}

func renderCatalogue(items []models.CatalogueItem, states []models.LikeState) string {
	lines := make([]string, len(items))
	for i, item := range items {
		mark := faint("♡")
		if states[i].Liked {
			mark = heart("♥")
		}
		lines[i] = fmt.Sprintf("[%s] %s %s %d", item.ID, item.Name, mark, states[i].Count)
	}
	return strings.Join(lines, "\n")
}

func renderLikeState(name string, s models.LikeState, pending bool) string {
	mark := faint("♡")
	if s.Liked {
		mark = heart("♥")
	}
	line := fmt.Sprintf("%s %s %d", name, mark, s.Count)
	if !pending {
		line += " " + faint("(reverted)")
	}
	return line
}

func renderIdentity(id models.Identity) string {
	if !id.IsAuthenticated() {
		return faint("Browsing anonymously.")
	}
	return success("Signed in as " + id.DisplayName)
}

func renderNotice(msg string) string {
	return success(msg)
}

func renderError(err error) string {
	return failure("Error: ") + err.Error()
}
