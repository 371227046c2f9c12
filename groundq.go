// Package groundq provides a durable job queue stored in a single
// relational table.
//
// This is the main package users should import. It re-exports the public
// types from the pkg/ packages for a clean API surface.
//
// Basic usage:
//
//	// Open a database and create the queue table
//	db, _ := groundq.Open("sqlite", "jobs.db")
//	store := groundq.NewGormStore(db)
//	store.Migrate(context.Background())
//
//	// Bind an engine to a queue
//	q, _ := groundq.New(store, "default")
//
//	// Push a job
//	job, _ := groundq.NewJob("email.send", EmailArgs{To: "user@example.com"})
//	q.Push(ctx, job)
//
//	// Process jobs
//	w := groundq.NewWorker(q, groundq.WithConcurrency(4))
//	w.Register("email.send", func(ctx context.Context, args EmailArgs) error {
//	    return sendEmail(args)
//	})
//	w.Start(ctx)
package groundq

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/groundq/groundq/pkg/core"
	"github.com/groundq/groundq/pkg/jobctx"
	"github.com/groundq/groundq/pkg/maintain"
	"github.com/groundq/groundq/pkg/metrics"
	"github.com/groundq/groundq/pkg/queue"
	"github.com/groundq/groundq/pkg/schedule"
	"github.com/groundq/groundq/pkg/security"
	"github.com/groundq/groundq/pkg/storage"
	"github.com/groundq/groundq/pkg/worker"
)

type (
	// Job is a unit of work: a class naming its handler plus JSON content.
	Job = core.Job

	// Record is the row shape of the queue table.
	Record = core.Record

	// Payload is the JSON envelope stored in a record's data column.
	Payload = core.Payload

	// Status is the lifecycle state of a record.
	Status = core.Status

	// Retention controls how long finished rows are kept, in minutes.
	Retention = core.Retention

	// Storage defines the persistence layer for job records.
	Storage = core.Storage

	// PayloadError reports a claimed row whose payload cannot be decoded.
	PayloadError = core.PayloadError

	// RetryError asks the worker to release the job for another attempt.
	RetryError = core.RetryError

	// FailError asks the worker to bury the job as permanently failed.
	FailError = core.FailError

	// Option modifies Options for Push, Bury, and Release.
	Option = core.Option

	// Options holds per-call configuration for Push, Bury, and Release.
	Options = core.Options

	// PurgeOption overrides the engine's retention for a single Purge.
	PurgeOption = core.PurgeOption

	// Queue is an engine bound to one queue name.
	Queue = queue.Queue

	// QueueOption configures a Queue.
	QueueOption = queue.QueueOption

	// Worker processes jobs from a queue.
	Worker = worker.Worker

	// WorkerOption configures a Worker.
	WorkerOption = worker.WorkerOption

	// WorkerConfig holds worker configuration.
	WorkerConfig = worker.WorkerConfig

	// RetryConfig holds configuration for retry with backoff.
	RetryConfig = worker.RetryConfig

	// Schedule defines when a recurring action should run next.
	Schedule = schedule.Schedule

	// Sweeper runs recover and purge maintenance on a queue.
	Sweeper = maintain.Sweeper

	// SweeperOption configures a Sweeper.
	SweeperOption = maintain.SweeperOption

	// Metrics holds the prometheus instruments for one queue.
	Metrics = metrics.Metrics

	// GormStore implements Storage using GORM.
	GormStore = storage.GormStore

	// StoreOption configures a GormStore.
	StoreOption = storage.StoreOption

	// PoolConfig holds database connection pool settings.
	PoolConfig = storage.PoolConfig

	// PoolOption configures a PoolConfig.
	PoolOption = storage.PoolOption
)

// Status constants
const (
	StatusPending = core.StatusPending
	StatusRunning = core.StatusRunning
	StatusDeleted = core.StatusDeleted
	StatusBuried  = core.StatusBuried
)

// Retention sentinels
const (
	RetentionDisabled  = core.RetentionDisabled
	RetentionUnlimited = core.RetentionUnlimited
)

// Security limits
const (
	MaxClassLength     = security.MaxClassLength
	MaxQueueNameLength = security.MaxQueueNameLength
	MaxContentSize     = security.MaxContentSize
	MaxConcurrency     = security.MaxConcurrency
	MaxMessageLength   = security.MaxMessageLength
	MaxTraceLength     = security.MaxTraceLength
)

// Defaults
const (
	DefaultDeletedRetention = queue.DefaultDeletedRetention
	DefaultBuriedRetention  = queue.DefaultBuriedRetention
	DefaultRecoverAfter     = maintain.DefaultRecoverAfter
	DefaultTable            = storage.DefaultTable
)

// Error variables
var (
	ErrInvalidQueueName = core.ErrInvalidQueueName
	ErrQueueNameTooLong = core.ErrQueueNameTooLong
	ErrInvalidClass     = core.ErrInvalidClass
	ErrClassTooLong     = core.ErrClassTooLong
	ErrContentTooLarge  = core.ErrContentTooLarge
	ErrNotFound         = core.ErrNotFound
	ErrStale            = core.ErrStale
)

// New creates an engine bound to the named queue on the given storage.
func New(s Storage, name string, opts ...QueueOption) (*Queue, error) {
	return queue.New(s, name, opts...)
}

// NewJob creates a job with the given class and JSON-marshaled content.
func NewJob(class string, content any) (*Job, error) {
	return core.NewJob(class, content)
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return core.NewOptions()
}

// Open opens a database by driver name ("sqlite", "postgres", "mysql")
// and applies the connection pool options.
func Open(driver, dsn string, opts ...PoolOption) (*gorm.DB, error) {
	return storage.Open(driver, dsn, opts...)
}

// NewGormStore creates a GORM-backed storage.
func NewGormStore(db *gorm.DB, opts ...StoreOption) *GormStore {
	return storage.NewGormStore(db, opts...)
}

// NewGormStoreWithPool creates a GORM-backed storage with pool options applied.
func NewGormStoreWithPool(db *gorm.DB, opts ...PoolOption) (*GormStore, error) {
	return storage.NewGormStoreWithPool(db, opts...)
}

// NewWorker creates a worker for the given queue.
func NewWorker(q *Queue, opts ...WorkerOption) *Worker {
	return worker.New(q, opts...)
}

// NewSweeper creates a maintenance sweeper for the given queue. Most
// deployments embed maintenance in a worker via WithMaintenance instead;
// see pkg/maintain for the standalone options.
func NewSweeper(q *Queue, opts ...SweeperOption) *Sweeper {
	return maintain.New(q, opts...)
}

// NewMetrics creates and registers the prometheus instruments for a queue.
func NewMetrics(reg prometheus.Registerer, queueName string) *Metrics {
	return metrics.New(reg, queueName)
}

// RetryAfter wraps an error to release the job for another attempt after
// a delay.
func RetryAfter(d time.Duration, err error) error {
	return core.RetryAfter(d, err)
}

// RetryAt wraps an error to release the job for another attempt at a
// specific time.
func RetryAt(t time.Time, err error) error {
	return core.RetryAt(t, err)
}

// Fail wraps an error to bury the job as permanently failed.
func Fail(err error) error {
	return core.Fail(err)
}

// ValidateClass validates a job class name.
func ValidateClass(class string) error {
	return security.ValidateClass(class)
}

// ValidateQueueName validates a queue name.
func ValidateQueueName(name string) error {
	return security.ValidateQueueName(name)
}

// SanitizeMessage truncates and sanitizes failure messages for storage.
func SanitizeMessage(msg string) string {
	return security.SanitizeMessage(msg)
}

// ClampConcurrency ensures concurrency is within limits.
func ClampConcurrency(n int) int {
	return security.ClampConcurrency(n)
}

// Job option functions

// Delay schedules the job to become eligible after a duration.
func Delay(d time.Duration) Option {
	return core.Delay(d)
}

// At schedules the job to become eligible at a specific time.
func At(t time.Time) Option {
	return core.At(t)
}

// Failure records a failure message and trace when burying a job.
func Failure(message, trace string) Option {
	return core.Failure(message, trace)
}

// Purge option functions

// PurgeDeleted overrides the deleted-row retention for one purge.
func PurgeDeleted(r Retention) PurgeOption {
	return core.PurgeDeleted(r)
}

// PurgeBuried overrides the buried-row retention for one purge.
func PurgeBuried(r Retention) PurgeOption {
	return core.PurgeBuried(r)
}

// Queue option functions

// WithDeletedRetention sets how long successfully finished rows are kept.
func WithDeletedRetention(r Retention) QueueOption {
	return queue.WithDeletedRetention(r)
}

// WithBuriedRetention sets how long permanently failed rows are kept.
func WithBuriedRetention(r Retention) QueueOption {
	return queue.WithBuriedRetention(r)
}

// WithQueueMetrics instruments the engine's push, claim, and purge counters.
func WithQueueMetrics(m *Metrics) QueueOption {
	return queue.WithMetrics(m)
}

// Worker option functions

// WithConcurrency sets how many jobs the worker processes at once.
func WithConcurrency(n int) WorkerOption {
	return worker.WithConcurrency(n)
}

// WithPollInterval sets how long the worker sleeps when the queue is empty.
func WithPollInterval(d time.Duration) WorkerOption {
	return worker.WithPollInterval(d)
}

// WithWorkerID sets the worker's identifier used in logs.
func WithWorkerID(id string) WorkerOption {
	return worker.WithWorkerID(id)
}

// WithRateLimit caps how many jobs per second the worker claims.
func WithRateLimit(perSecond float64, burst int) WorkerOption {
	return worker.WithRateLimit(perSecond, burst)
}

// WithMaintenance embeds a maintenance sweep in the worker.
func WithMaintenance(sched Schedule) WorkerOption {
	return worker.WithMaintenance(sched)
}

// WithRecoverAfter sets the embedded sweep's recover window.
func WithRecoverAfter(d time.Duration) WorkerOption {
	return worker.WithRecoverAfter(d)
}

// WithMetrics instruments the worker's job outcomes and durations.
func WithMetrics(m *Metrics) WorkerOption {
	return worker.WithMetrics(m)
}

// WithStorageRetry sets the retry configuration for settling jobs.
func WithStorageRetry(cfg RetryConfig) WorkerOption {
	return worker.WithStorageRetry(cfg)
}

// WithPopRetry sets the retry configuration for claiming jobs.
func WithPopRetry(cfg RetryConfig) WorkerOption {
	return worker.WithPopRetry(cfg)
}

// WithRetryAttempts sets the number of storage retry attempts.
func WithRetryAttempts(n int) WorkerOption {
	return worker.WithRetryAttempts(n)
}

// DisableRetry makes every storage operation and pop a single attempt.
func DisableRetry() WorkerOption {
	return worker.DisableRetry()
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return worker.DefaultRetryConfig()
}

// Pool option functions

// DefaultPoolConfig returns sensible connection pool defaults.
func DefaultPoolConfig() PoolConfig {
	return storage.DefaultPoolConfig()
}

// HighConcurrencyPoolConfig returns pool settings for many workers.
func HighConcurrencyPoolConfig() PoolConfig {
	return storage.HighConcurrencyPoolConfig()
}

// ResourceConstrainedPoolConfig returns pool settings for small deployments.
func ResourceConstrainedPoolConfig() PoolConfig {
	return storage.ResourceConstrainedPoolConfig()
}

// MaxOpenConns sets the maximum number of open connections.
func MaxOpenConns(n int) PoolOption {
	return storage.MaxOpenConns(n)
}

// MaxIdleConns sets the maximum number of idle connections.
func MaxIdleConns(n int) PoolOption {
	return storage.MaxIdleConns(n)
}

// ConnMaxLifetime sets the maximum lifetime of a connection.
func ConnMaxLifetime(d time.Duration) PoolOption {
	return storage.ConnMaxLifetime(d)
}

// ConnMaxIdleTime sets the maximum idle time of a connection.
func ConnMaxIdleTime(d time.Duration) PoolOption {
	return storage.ConnMaxIdleTime(d)
}

// WithPoolConfig applies a complete pool configuration.
func WithPoolConfig(cfg PoolConfig) PoolOption {
	return storage.WithPoolConfig(cfg)
}

// ConfigurePool applies pool options to an open database.
func ConfigurePool(db *gorm.DB, opts ...PoolOption) error {
	return storage.ConfigurePool(db, opts...)
}

// WithTable sets the table name the store reads and writes.
func WithTable(name string) StoreOption {
	return storage.WithTable(name)
}

// Schedule functions

// Every creates a schedule that runs at fixed intervals.
func Every(d time.Duration) Schedule {
	return schedule.Every(d)
}

// Daily creates a schedule that runs at a specific time each day.
func Daily(hour, minute int) Schedule {
	return schedule.Daily(hour, minute)
}

// Weekly creates a schedule that runs at a specific day and time each week.
func Weekly(day time.Weekday, hour, minute int) Schedule {
	return schedule.Weekly(day, hour, minute)
}

// Cron creates a schedule from a cron expression, panicking if it is
// invalid. Use ParseCron to handle the error instead.
func Cron(expr string) Schedule {
	return schedule.Cron(expr)
}

// ParseCron creates a schedule from a cron expression.
func ParseCron(expr string) (Schedule, error) {
	return schedule.ParseCron(expr)
}

// JobFromContext returns the job being processed, or nil outside a handler.
func JobFromContext(ctx context.Context) *Job {
	return jobctx.JobFromContext(ctx)
}

// JobIDFromContext returns the id of the job being processed, or zero
// outside a handler.
func JobIDFromContext(ctx context.Context) int64 {
	return jobctx.JobIDFromContext(ctx)
}

// WorkerIDFromContext returns the id of the worker processing the job, or
// an empty string outside a handler.
func WorkerIDFromContext(ctx context.Context) string {
	return jobctx.WorkerIDFromContext(ctx)
}
