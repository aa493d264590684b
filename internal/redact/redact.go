// Package redact scrubs credentials and other secrets from strings before
// they are logged or returned in error responses. Database DSNs, API keys,
// bearer tokens and JWTs all end up in driver and client error messages.
package redact

import "regexp"

// Placeholders substituted for redacted values.
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules run in order. JWTs go first so the bearer and key rules do not
// split them.
var rules = []rule{
	{
		regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
		RedactedJWTPlaceholder,
	},
	{
		// scheme://user:password@ in connection strings
		regexp.MustCompile(`(?i)\b((?:postgres(?:ql)?|pgx|sqlite|file|mysql|https?)://)[^/\s:@]+:[^@\s]+@`),
		"${1}" + RedactedCredentialPlaceholder + "@",
	},
	{
		// key=value DSN form: password=... / sslpassword=...
		regexp.MustCompile(`(?i)\b((?:ssl)?password|passwd|pwd)(\s*[=:]\s*)('[^']*'|"[^"]*"|[^\s&;,]+)`),
		"${1}${2}" + RedactedCredentialPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)\b(bearer\s+)[A-Za-z0-9_\-.~+/]+=*`),
		"${1}" + RedactedCredentialPlaceholder,
	},
	{
		// Google API keys, as used for Gemini
		regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),
		RedactedKeyPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)\b(api[_-]?key|x-goog-api-key|jwt[_-]?secret|secret|token|key)(['"]?\s*[=:]\s*['"]?)[A-Za-z0-9_\-.~+/]{8,}`),
		"${1}${2}" + RedactedKeyPlaceholder,
	},
	{
		regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		RedactedEmailPlaceholder,
	},
	{
		regexp.MustCompile(`\b(?:SELECT|INSERT|UPDATE|DELETE)\b[^;]*?\b(?:FROM|INTO|SET)\b[^;]*`),
		RedactedSQLPlaceholder,
	},
}

// String returns input with sensitive values replaced by placeholders.
func String(input string) string {
	if input == "" {
		return input
	}
	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error returns the redacted text of err, or "" for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
