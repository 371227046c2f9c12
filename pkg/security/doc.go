// Package security provides validation, sanitization, and limits for the groundq package.
//
// This package includes:
//   - Input validation for job class names and queue names
//   - Failure message and trace sanitization to keep stored diagnostics safe
//   - Clamping functions to enforce safe limits on concurrency
//   - Security-related constants defining maximum sizes and counts
//
// Most users should import the root package github.com/groundq/groundq
// which re-exports these functions.
package security
