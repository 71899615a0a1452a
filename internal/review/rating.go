package review

import (
	"errors"
	"strconv"
	"strings"
)

const (
	MinRating = 0
	MaxRating = 5
)

var (
	// ErrNotANumber means the rating input is not a base-10 integer.
	ErrNotANumber = errors.New("review: rating is not a number")
	// ErrRatingOutOfRange means the rating is an integer outside [MinRating, MaxRating].
	ErrRatingOutOfRange = errors.New("review: rating out of range")
)

// ParseRating validates user input for the rating step.
func ParseRating(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, ErrNotANumber
	}
	if n < MinRating || n > MaxRating {
		return 0, ErrRatingOutOfRange
	}
	return n, nil
}
