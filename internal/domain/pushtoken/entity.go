package pushtoken

import (
	"regexp"
	"time"
)

// Token is a registered mobile push token
type Token struct {
	Token     string
	DeviceID  *string
	CreatedAt time.Time
}

var expoTokenPattern = regexp.MustCompile(`^Expo(nent)?PushToken\[.+\]$`)

// IsExpoToken reports whether the token is addressable through the Expo push service.
func IsExpoToken(token string) bool {
	return expoTokenPattern.MatchString(token)
}
