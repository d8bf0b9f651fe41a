package pushtoken

import "errors"

var (
	ErrEmptyToken = errors.New("push token is required")
)
