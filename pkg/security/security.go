// Package security provides validation, sanitization, and limits for the groundq package.
package security

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/groundq/groundq/pkg/core"
)

// Security limits and configuration
const (
	// MaxClassLength is the maximum length for job class names
	MaxClassLength = 255

	// MaxQueueNameLength is the maximum length for queue names
	MaxQueueNameLength = 255

	// MaxContentSize is the maximum size in bytes for job content (1MB)
	MaxContentSize = 1 << 20

	// MaxConcurrency is the hard limit for worker concurrency
	MaxConcurrency = 1000

	// MaxMessageLength is the maximum length for stored failure messages
	MaxMessageLength = 4096

	// MaxTraceLength is the maximum length for stored failure traces
	MaxTraceLength = 1 << 16
)

// validIdentifier matches alphanumeric, hyphens, underscores, and dots
var validIdentifier = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_\-\.]*$`)

// ValidateClass validates a job class name
func ValidateClass(class string) error {
	if class == "" {
		return core.ErrInvalidClass
	}
	if len(class) > MaxClassLength {
		return core.ErrClassTooLong
	}
	if !validIdentifier.MatchString(class) {
		return core.ErrInvalidClass
	}
	return nil
}

// ValidateQueueName validates a queue name
func ValidateQueueName(name string) error {
	if name == "" {
		return core.ErrInvalidQueueName
	}
	if len(name) > MaxQueueNameLength {
		return core.ErrQueueNameTooLong
	}
	if !validIdentifier.MatchString(name) {
		return core.ErrInvalidQueueName
	}
	return nil
}

// ValidateContent checks the serialized content size
func ValidateContent(content []byte) error {
	if len(content) > MaxContentSize {
		return core.ErrContentTooLarge
	}
	return nil
}

// SanitizeMessage truncates and sanitizes failure messages for storage
func SanitizeMessage(msg string) string {
	return sanitize(msg, MaxMessageLength)
}

// SanitizeTrace truncates and sanitizes failure traces for storage
func SanitizeTrace(trace string) string {
	return sanitize(trace, MaxTraceLength)
}

func sanitize(s string, limit int) string {
	if s == "" {
		return ""
	}

	// Remove any null bytes or control characters (except newlines)
	var sanitized strings.Builder
	sanitized.Grow(len(s))

	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			sanitized.WriteRune(r)
		}
	}

	result := sanitized.String()

	// Truncate if too long
	if utf8.RuneCountInString(result) > limit {
		runes := []rune(result)
		result = string(runes[:limit-3]) + "..."
	}

	return result
}

// ClampConcurrency ensures concurrency is within limits
func ClampConcurrency(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxConcurrency {
		return MaxConcurrency
	}
	return n
}
