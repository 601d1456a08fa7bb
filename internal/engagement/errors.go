package engagement

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("sign in to continue")
	ErrQuotaExceeded   = errors.New("review limit reached")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotOwner        = errors.New("only the author can change this review")
	ErrRemoteFailure   = errors.New("remote store failure")
	ErrReviewNotFound  = errors.New("review not found")
	ErrTogglePending   = errors.New("like change still in flight")
)

// ValidationError names the first rule a review draft violated.
type ValidationError struct {
	Rule    Rule
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func remoteFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrRemoteFailure, err)
}
