package provider

import "regexp"

var secretPattern = regexp.MustCompile(`("?\b(?:access_token|refresh_token|client_secret|code)\b"?\s*[:=]\s*"?)([^"&,\s}]+)`)

// Redact masks credential values in a provider response or error message.
func Redact(s string) string {
	return secretPattern.ReplaceAllString(s, "${1}[REDACTED]")
}
