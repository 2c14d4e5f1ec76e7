package validators

import "strings"

// SanitizeString trims surrounding whitespace and caps free-text inputs such
// as search terms and borrower names. Truncation is rune aware so a multibyte
// name is never cut mid character.
func SanitizeString(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return s
}
