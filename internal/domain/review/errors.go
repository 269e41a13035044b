package review

import "errors"

var (
	ErrNotPermitted    = errors.New("mutation not permitted for role")
	ErrInvalidRating   = errors.New("rating must be an integer between 1 and 4")
	ErrInvalidStatus   = errors.New("invalid goal status")
	ErrIndexOutOfRange = errors.New("item index out of range")
	ErrStaleWrite      = errors.New("stale write discarded")
	ErrNotFound        = errors.New("review not found")
)
