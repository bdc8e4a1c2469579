package strings

import (
	"strings"
)

// DefaultDiagnosticMaxLen is the default maximum length of response bodies kept
// as diagnostic context in validation results.
const DefaultDiagnosticMaxLen = 512

// DefaultDescriptionMaxLen is the default maximum length for descriptions in table output.
const DefaultDescriptionMaxLen = 60

// MinTruncateLen is the minimum maxLen value for Truncate.
// Values smaller than this would not leave room for meaningful content plus "...".
const MinTruncateLen = 4

// Truncate collapses s onto a single line and shortens it to maxLen runes,
// appending "..." when content was cut.
//
// maxLen values below MinTruncateLen are clamped to MinTruncateLen.
func Truncate(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
