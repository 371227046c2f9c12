// Package storage provides the GORM-backed persistence layer for the groundq package.
package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/groundq/groundq/pkg/core"
	"github.com/groundq/groundq/pkg/security"
)

// DefaultTable is the table records live in unless WithTable overrides it.
const DefaultTable = "jobs"

// GormStore implements core.Storage using GORM. Every mutation that moves a
// row out of RUNNING is a conditional update guarded by the current status;
// a guard that matches no row reports core.ErrStale instead of writing over
// another consumer's transition.
type GormStore struct {
	db    *gorm.DB
	table string
}

// StoreOption configures a GormStore.
type StoreOption interface {
	applyStore(*GormStore)
}

type storeOptionFunc func(*GormStore)

func (f storeOptionFunc) applyStore(s *GormStore) { f(s) }

// WithTable points the store at a different table name. Queues sharing a
// database stay isolated by the queue column; separate tables only need
// separate stores.
func WithTable(name string) StoreOption {
	return storeOptionFunc(func(s *GormStore) {
		s.table = name
	})
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB, opts ...StoreOption) *GormStore {
	s := &GormStore{db: db, table: DefaultTable}
	for _, opt := range opts {
		opt.applyStore(s)
	}
	return s
}

// Table returns the table name the store operates on.
func (s *GormStore) Table() string {
	return s.table
}

// DB exposes the underlying GORM handle.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

// IsSQLite reports whether the underlying dialect is SQLite. SQLite has no
// row lock clause; its single-writer transactions serialize claims instead.
func (s *GormStore) IsSQLite() bool {
	if s.db == nil {
		return false
	}
	return s.db.Dialector.Name() == "sqlite"
}

func (s *GormStore) records(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table(s.table)
}

// Migrate creates the queue table and its claim index.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.records(ctx).AutoMigrate(&core.Record{})
}

// Insert persists a new record and writes the assigned id back.
func (s *GormStore) Insert(ctx context.Context, rec *core.Record) error {
	return s.records(ctx).Create(rec).Error
}

// Find returns a record by id, (nil, nil) if absent.
func (s *GormStore) Find(ctx context.Context, id int64) (*core.Record, error) {
	var rec core.Record
	err := s.records(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ClaimNext claims the next eligible pending record on the queue and moves
// it to RUNNING.
//
// Note the order: the row with the LATEST scheduled time wins, so the queue
// serves the most recently eligible work first rather than FIFO. Consumers
// that need strict arrival order should not rely on claim order.
//
// The select and the update run in one transaction. On dialects with row
// locks the select takes FOR UPDATE; on SQLite the write transaction itself
// serializes writers. The update re-checks the PENDING status and demands
// exactly one affected row, so a row stolen between select and update costs
// the caller nothing but an empty result.
func (s *GormStore) ClaimNext(ctx context.Context, queue string) (*core.Record, error) {
	var rec core.Record
	var claimed bool
	now := time.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next := tx.Table(s.table).
			Where("queue = ?", queue).
			Where("status = ?", core.StatusPending).
			Where("scheduled <= ?", now).
			Order("scheduled DESC")
		if !s.IsSQLite() {
			next = next.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
		}

		result := next.First(&rec)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return nil
			}
			return result.Error
		}

		update := tx.Table(s.table).
			Where("id = ? AND status = ?", rec.ID, core.StatusPending).
			Updates(map[string]any{
				"status":   core.StatusRunning,
				"executed": now,
				"finished": nil,
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected != 1 {
			// Lost the race; another consumer moved the row first.
			return nil
		}

		rec.Status = core.StatusRunning
		rec.Executed = &now
		rec.Finished = nil
		claimed = true
		return nil
	})

	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, nil
	}
	return &rec, nil
}

// Remove hard-deletes a record. Removing an absent record is not an error.
func (s *GormStore) Remove(ctx context.Context, id int64) error {
	return s.records(ctx).Where("id = ?", id).Delete(&core.Record{}).Error
}

// MarkDeleted moves a RUNNING record to DELETED, stamping finished.
func (s *GormStore) MarkDeleted(ctx context.Context, id int64) error {
	result := s.records(ctx).
		Where("id = ? AND status = ?", id, core.StatusRunning).
		Updates(map[string]any{
			"status":   core.StatusDeleted,
			"finished": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return core.ErrStale
	}
	return nil
}

// MarkBuried moves a RUNNING record to BURIED, stamping finished and
// recording the failure diagnostics. Message and trace are sanitized before
// storage.
func (s *GormStore) MarkBuried(ctx context.Context, id int64, message, trace string) error {
	result := s.records(ctx).
		Where("id = ? AND status = ?", id, core.StatusRunning).
		Updates(map[string]any{
			"status":   core.StatusBuried,
			"finished": time.Now(),
			"message":  security.SanitizeMessage(message),
			"trace":    security.SanitizeTrace(trace),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return core.ErrStale
	}
	return nil
}

// Reschedule moves a RUNNING record back to PENDING with a new scheduled
// time and payload, clearing finished and the diagnostics.
func (s *GormStore) Reschedule(ctx context.Context, id int64, scheduled time.Time, data string) error {
	result := s.records(ctx).
		Where("id = ? AND status = ?", id, core.StatusRunning).
		Updates(map[string]any{
			"status":    core.StatusPending,
			"scheduled": scheduled,
			"data":      data,
			"finished":  nil,
			"message":   nil,
			"trace":     nil,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return core.ErrStale
	}
	return nil
}

// RecoverAbandoned returns to PENDING every RUNNING record on the queue
// that was claimed before cutoff and never finished.
func (s *GormStore) RecoverAbandoned(ctx context.Context, queue string, cutoff time.Time) (int64, error) {
	result := s.records(ctx).
		Where("queue = ?", queue).
		Where("status = ?", core.StatusRunning).
		Where("executed < ?", cutoff).
		Where("finished IS NULL").
		Updates(map[string]any{"status": core.StatusPending})
	return result.RowsAffected, result.Error
}

// PurgeFinished removes the queue's records of the given terminal status
// whose finished time is strictly before cutoff.
func (s *GormStore) PurgeFinished(ctx context.Context, queue string, status core.Status, cutoff time.Time) (int64, error) {
	result := s.records(ctx).
		Where("queue = ?", queue).
		Where("status = ?", status).
		Where("finished IS NOT NULL").
		Where("finished < ?", cutoff).
		Delete(&core.Record{})
	return result.RowsAffected, result.Error
}

// Stats counts the queue's records by status.
func (s *GormStore) Stats(ctx context.Context, queue string) (map[core.Status]int64, error) {
	var rows []struct {
		Status core.Status
		Count  int64
	}
	err := s.records(ctx).
		Select("status, count(*) as count").
		Where("queue = ?", queue).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make(map[core.Status]int64, len(rows))
	for _, row := range rows {
		stats[row.Status] = row.Count
	}
	return stats, nil
}
