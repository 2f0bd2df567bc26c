package utils

import "strings"

// RedactSecret masks a credential for logging, keeping at most a short prefix
func RedactSecret(secret string) string {
	if secret == "" {
		return ""
	}
	runes := []rune(secret)
	if len(runes) <= 8 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:4]) + strings.Repeat("*", 4)
}
