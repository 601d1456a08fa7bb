package engagement

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/HammerMeetNail/barberbook/internal/models"
)

type Rule string

const (
	RuleRatingRange   Rule = "rating_range"
	RuleCommentLength Rule = "comment_length"
)

// CheckReview applies the review rules in order and reports the first one
// violated, or nil when the draft is acceptable.
func CheckReview(rating int, comment string) *ValidationError {
	if rating < models.MinRating || rating > models.MaxRating {
		return &ValidationError{
			Rule:    RuleRatingRange,
			Message: fmt.Sprintf("rating must be between %d and %d", models.MinRating, models.MaxRating),
		}
	}

	n := utf8.RuneCountInString(strings.TrimSpace(comment))
	if n < 1 || n > models.MaxCommentLength {
		return &ValidationError{
			Rule:    RuleCommentLength,
			Message: fmt.Sprintf("comment must be between 1 and %d characters", models.MaxCommentLength),
		}
	}

	return nil
}
