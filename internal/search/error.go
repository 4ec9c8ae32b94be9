package search

import "errors"

var (
	ErrEmptyQuery             = errors.New("search query is required")
	ErrImageTooLarge          = errors.New("image exceeds 5 MiB")
	ErrUnsupportedImage       = errors.New("image must be jpeg, png or webp")
	ErrImageSearchUnavailable = errors.New("image search is not available")
)
