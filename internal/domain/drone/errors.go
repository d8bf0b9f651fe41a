package drone

import "errors"

var (
	ErrDroneNotFound      = errors.New("drone not found")
	ErrDroneMismatch      = errors.New("credentials belong to a different drone")
	ErrInvalidDroneName   = errors.New("drone name is required")
	ErrRegistrationFailed = errors.New("drone registration failed")
	ErrVideoURLNotFound   = errors.New("video url not configured")
)
