package logutil

import "strings"

// SanitizeForLog flattens caller-supplied text to a single log-safe line.
// Newlines and tabs become spaces and remaining control characters are
// dropped, so a crafted username or image name cannot forge log entries.
func SanitizeForLog(s string) string {
	replacer := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ")
	s = replacer.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 32 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
