package rating

import "errors"

var (
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrRatingNotFound = errors.New("rating not found")
)
