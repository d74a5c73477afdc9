package logging

import (
	"regexp"
	"strings"
)

const (
	// MaxQueryLogLength is the maximum length of a query to log
	MaxQueryLogLength = 100
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// password=xxx, pwd=xxx, pass=xxx in libpq key/value and ADO.NET (SQL Server)
	// connection strings, up to the next delimiter.
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// user:pass@host in postgresql:// and sqlserver:// URLs.
	urlCredentialsPattern = regexp.MustCompile(`://[^:/\s]+:[^@\s]+@[^/?\s]+`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// SanitizeConnectionString removes credentials from a connection string.
// Use this before logging any connection string.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}
	return redact(connStr)
}

// SanitizeError renders an error with credentials removed.
// Driver errors often echo the DSN they failed to use.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return redact(err.Error())
}

// SanitizedError wraps err so that its message has credentials removed while
// errors.Is and errors.As still see the original chain. It returns nil for a
// nil err.
func SanitizedError(err error) error {
	if err == nil {
		return nil
	}
	return &sanitizedError{msg: redact(err.Error()), err: err}
}

type sanitizedError struct {
	msg string
	err error
}

func (e *sanitizedError) Error() string { return e.msg }

func (e *sanitizedError) Unwrap() error { return e.err }

// SanitizeQuery collapses whitespace, redacts credentials and truncates a
// SQL statement for logging.
func SanitizeQuery(query string) string {
	if query == "" {
		return ""
	}
	collapsed := strings.TrimSpace(whitespacePattern.ReplaceAllString(query, " "))
	return TruncateString(redact(collapsed), MaxQueryLogLength)
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 0 {
		maxLen = 0
	}
	return s[:maxLen] + "..."
}

func redact(s string) string {
	s = passwordPattern.ReplaceAllString(s, "${1}="+RedactedText)
	return urlCredentialsPattern.ReplaceAllString(s, "://"+RedactedText+"@"+RedactedText)
}
