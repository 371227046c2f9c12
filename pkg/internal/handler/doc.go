// Package handler provides internal reflection-based handler execution.
//
// This package is internal and should not be imported directly.
// It provides:
//   - Handler: Metadata and execution for registered job handlers
//   - Reflection-based argument unmarshaling and invocation
package handler
