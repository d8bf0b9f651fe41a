package detection

import "errors"

var (
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")
	ErrInvalidDate       = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidSince      = errors.New("since must be an RFC3339 timestamp")
)
