// Package storage provides storage implementations for job persistence.
//
// This package includes:
//   - GormStore: a GORM-based implementation supporting SQLite, PostgreSQL, and MySQL
//   - Open: a dialector dispatcher with connection pool configuration
//
// The Storage interface is defined in pkg/core and must be implemented
// by any custom storage backend. All state lives in a single table; the
// claim protocol combines a transaction, the strongest row lock the dialect
// offers, and a status-guarded conditional update, so that many workers on
// many hosts can share one table safely.
//
// Most users should import the root package github.com/groundq/groundq
// which provides NewGormStore() to create store instances.
package storage
