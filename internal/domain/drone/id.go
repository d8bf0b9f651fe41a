package drone

import (
	"fmt"
	"strconv"
	"strings"
)

// IDPattern returns the prefix shared by every id issued in year, e.g. "GK_2025_".
func IDPattern(prefix string, year int) string {
	return fmt.Sprintf("%s_%d_", prefix, year)
}

func FormatID(prefix string, year, seq int) string {
	return fmt.Sprintf("%s%02d", IDPattern(prefix, year), seq)
}

// ParseIDSequence extracts the numeric suffix of id when it belongs to prefix and year.
func ParseIDSequence(id, prefix string, year int) (int, bool) {
	suffix, ok := strings.CutPrefix(id, IDPattern(prefix, year))
	if !ok || suffix == "" {
		return 0, false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	seq, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return seq, true
}

// NextID picks the id following the highest sequence among existing for the given year.
// The first id of a year ends in 00.
func NextID(prefix string, year int, existing []string) string {
	next := 0
	for _, id := range existing {
		if seq, ok := ParseIDSequence(id, prefix, year); ok && seq+1 > next {
			next = seq + 1
		}
	}
	return FormatID(prefix, year, next)
}
