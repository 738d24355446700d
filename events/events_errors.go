package events

import "errors"

var (
	ErrEventIDRequired = errors.New("event id is required")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrInvalidSort     = errors.New("unknown sort order")
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD")
)
