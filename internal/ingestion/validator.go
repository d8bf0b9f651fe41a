package ingestion

import (
	"fmt"
	"strings"

	domainDetection "drone-fire-monitor/internal/domain/detection"
)

// ValidationError represents a malformed bridge message
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [%s]: %s", e.Field, e.Message)
}

// ValidateDetectionMessage rejects messages that can never be stored, before they take a
// slot in the processing buffer. Full validation happens in the ingestion use case.
func ValidateDetectionMessage(msg *DetectionMessage) error {
	if strings.TrimSpace(msg.DroneName) == "" {
		return &ValidationError{Field: "drone_name", Message: "drone_name is required in the payload or topic"}
	}

	if msg.Confidence == nil {
		return &ValidationError{Field: "confidence", Message: "confidence is required"}
	}
	if !domainDetection.ValidConfidence(*msg.Confidence) {
		return &ValidationError{Field: "confidence", Message: "confidence must be between 0 and 1"}
	}

	if (msg.GPSLat == nil) != (msg.GPSLon == nil) {
		return &ValidationError{Field: "gps", Message: "gps_lat and gps_lon must be sent together"}
	}

	return nil
}
