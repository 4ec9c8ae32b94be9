package comment

import "errors"

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrInvalidComment  = errors.New("comment must be between 1 and 1000 characters")
	ErrForbidden       = errors.New("not allowed to modify this comment")
)
