package strings

import (
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "short string unchanged",
			input:    "OK",
			maxLen:   10,
			expected: "OK",
		},
		{
			name:     "exact length unchanged",
			input:    "hello",
			maxLen:   5,
			expected: "hello",
		},
		{
			name:     "long body truncated",
			input:    "404 page not found on this server",
			maxLen:   15,
			expected: "404 page not...",
		},
		{
			name:     "html body collapsed to one line",
			input:    "<html>\n  <body>\n\tNot Found\n  </body>\n</html>",
			maxLen:   100,
			expected: "<html> <body> Not Found </body> </html>",
		},
		{
			name:     "unicode kept whole",
			input:    "épreuve échouée",
			maxLen:   8,
			expected: "épreu...",
		},
		{
			name:     "tiny max length clamped",
			input:    "abcdefgh",
			maxLen:   1,
			expected: "a...",
		},
		{
			name:     "empty input",
			input:    "",
			maxLen:   10,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Truncate(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
			}
		})
	}
}
