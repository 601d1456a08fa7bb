package views

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/HammerMeetNail/barberbook/internal/models"
)

// RatingFilter selects reviews by star rating. FilterAll keeps everything.
type RatingFilter int

const FilterAll RatingFilter = 0

func (f RatingFilter) String() string {
	if f == FilterAll {
		return "all"
	}
	return strconv.Itoa(int(f))
}

func ParseRatingFilter(s string) (RatingFilter, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "all" {
		return FilterAll, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < models.MinRating || n > models.MaxRating {
		return FilterAll, fmt.Errorf("rating filter must be all or %d-%d, got %q", models.MinRating, models.MaxRating, s)
	}
	return RatingFilter(n), nil
}

// AverageRating is the mean rating rounded to one decimal, or 0 for none.
func AverageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return math.Round(avg*10) / 10
}

// CountByRating tallies reviews per star value. Every rating from 1 to 5 is
// present in the result.
func CountByRating(reviews []models.Review) map[int]int {
	counts := make(map[int]int, models.MaxRating)
	for r := models.MinRating; r <= models.MaxRating; r++ {
		counts[r] = 0
	}
	for _, r := range reviews {
		counts[r.Rating]++
	}
	return counts
}

// Filter returns the reviews matching f in their original order. The input
// is never modified.
func Filter(reviews []models.Review, f RatingFilter) []models.Review {
	out := make([]models.Review, 0, len(reviews))
	for _, r := range reviews {
		if f == FilterAll || r.Rating == int(f) {
			out = append(out, r)
		}
	}
	return out
}
