// Package core provides the domain models and interfaces for the groundq package.
//
// This package contains:
//   - Record, the persisted row model with GORM annotations
//   - Job and Payload, the in-memory handle and its serialized envelope
//   - Status and Retention value types
//   - Storage and Queue interfaces defining the persistence and engine contracts
//   - Error types for queue operations and handler outcomes
//
// Most users should import the root package github.com/groundq/groundq
// instead of this package directly.
package core
