package validators

import "strings"

// SanitizeString trims input and reports whether it fits in maxLen bytes; maxLen <= 0 means
// no limit. Over-long input is never cut down.
func SanitizeString(input string, maxLen int) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed, false
	}
	return trimmed, true
}
