package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var nonIdentifierChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// SanitizeIdentifier replaces every character outside [A-Za-z0-9_] with an underscore.
// Multi-byte characters become a single underscore each.
func SanitizeIdentifier(input string) string {
	return nonIdentifierChars.ReplaceAllString(input, "_")
}

// SanitizeName trims whitespace and drops control characters from operator-supplied names.
func SanitizeName(input string) string {
	trimmed := strings.TrimSpace(input)
	return removeControlChars(trimmed)
}

// removeControlChars removes control characters from string
func removeControlChars(input string) string {
	var result strings.Builder
	for _, r := range input {
		if unicode.IsPrint(r) || r == ' ' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
