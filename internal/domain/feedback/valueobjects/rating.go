package valueobjects

import "fmt"

const (
	MinRating = 1
	MaxRating = 5
)

// Rating is a 1 to 5 star score.
type Rating int

func NewRating(v int) (Rating, error) {
	if v < MinRating || v > MaxRating {
		return 0, fmt.Errorf("rating must be between %d and %d", MinRating, MaxRating)
	}
	return Rating(v), nil
}

func (r Rating) Int() int {
	return int(r)
}
