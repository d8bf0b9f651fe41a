package detection

import (
	"strings"

	"drone-fire-monitor/pkg/utils"
)

// CollectionName derives the storage partition name for a drone.
// Distinct names may map to the same collection, e.g. "drone-1" and "drone_1".
func CollectionName(droneName string) string {
	return utils.SanitizeIdentifier(strings.TrimSpace(droneName))
}

// ValidConfidence reports whether c is a usable detection confidence.
func ValidConfidence(c float64) bool {
	return c >= 0 && c <= 1
}
