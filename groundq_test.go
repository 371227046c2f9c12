package groundq_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundq/groundq"
)

// setupTestQueue creates an in-memory SQLite engine for use in tests.
func setupTestQueue(t *testing.T, opts ...groundq.QueueOption) (*groundq.Queue, *groundq.GormStore) {
	t.Helper()

	db, err := groundq.Open("sqlite", ":memory:")
	require.NoError(t, err)

	store := groundq.NewGormStore(db)
	require.NoError(t, store.Migrate(context.Background()))

	q, err := groundq.New(store, "default", opts...)
	require.NoError(t, err)
	return q, store
}

// ---------------------------------------------------------------------------
// TestFacadeNew - engine and storage construction
// ---------------------------------------------------------------------------

func TestFacadeNew_CreatesQueue(t *testing.T) {
	q, _ := setupTestQueue(t)
	assert.NotNil(t, q)
	assert.Equal(t, "default", q.Name())
}

func TestFacadeNew_NewGormStore(t *testing.T) {
	db, err := groundq.Open("sqlite", ":memory:")
	require.NoError(t, err)

	store := groundq.NewGormStore(db)
	assert.NotNil(t, store)
	assert.Equal(t, groundq.DefaultTable, store.Table())
}

func TestFacadeNew_RejectsInvalidQueueName(t *testing.T) {
	db, err := groundq.Open("sqlite", ":memory:")
	require.NoError(t, err)
	store := groundq.NewGormStore(db)
	require.NoError(t, store.Migrate(context.Background()))

	_, err = groundq.New(store, "has space")
	assert.ErrorIs(t, err, groundq.ErrInvalidQueueName)
}

func TestFacadeNew_PushPopDeleteRoundTrip(t *testing.T) {
	q, _ := setupTestQueue(t)
	ctx := context.Background()

	job, err := groundq.NewJob("email.send", map[string]string{"to": "user@example.com"})
	require.NoError(t, err)
	require.NoError(t, q.Push(ctx, job))
	assert.NotZero(t, job.ID)

	claimed, err := q.Pop(ctx)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, job.ID, claimed.ID)
	assert.Equal(t, "email.send", claimed.Class)

	require.NoError(t, q.Delete(ctx, claimed))

	_, err = q.Peek(ctx, job.ID)
	assert.ErrorIs(t, err, groundq.ErrNotFound)
}

// ---------------------------------------------------------------------------
// TestFacadeLifecycle - release and bury through the facade
// ---------------------------------------------------------------------------

func TestFacadeLifecycle_ReleaseThenBury(t *testing.T) {
	q, store := setupTestQueue(t)
	ctx := context.Background()

	job, err := groundq.NewJob("report.build", map[string]int{"month": 7})
	require.NoError(t, err)
	require.NoError(t, q.Push(ctx, job))

	// First attempt fails transiently
	claimed, err := q.Pop(ctx)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	require.NoError(t, q.Release(ctx, claimed))

	// Second attempt fails permanently
	claimed, err = q.Pop(ctx)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	require.NoError(t, q.Bury(ctx, claimed, groundq.Failure("upstream gone", "")))

	// The buried row is still reachable by id
	peeked, err := q.Peek(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, peeked.ID)

	rec, err := store.Find(ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, groundq.StatusBuried, rec.Status)
	require.NotNil(t, rec.Message)
	assert.Equal(t, "upstream gone", *rec.Message)

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats[groundq.StatusBuried])
}

func TestFacadeLifecycle_SettlingTwiceReportsStale(t *testing.T) {
	q, _ := setupTestQueue(t)
	ctx := context.Background()

	job, err := groundq.NewJob("email.send", map[string]string{"to": "user@example.com"})
	require.NoError(t, err)
	require.NoError(t, q.Push(ctx, job))

	claimed, err := q.Pop(ctx)
	require.NoError(t, err)
	require.NotNil(t, claimed)

	require.NoError(t, q.Release(ctx, claimed))
	assert.ErrorIs(t, q.Release(ctx, claimed), groundq.ErrStale)
}

// ---------------------------------------------------------------------------
// TestFacadeJobOptions - option builders return non-nil options and apply
// ---------------------------------------------------------------------------

func TestFacadeJobOptions_AllReturnNonNil(t *testing.T) {
	assert.NotNil(t, groundq.Delay(time.Second))
	assert.NotNil(t, groundq.At(time.Now().Add(time.Minute)))
	assert.NotNil(t, groundq.Failure("msg", "trace"))
	assert.NotNil(t, groundq.PurgeDeleted(groundq.RetentionDisabled))
	assert.NotNil(t, groundq.PurgeBuried(groundq.RetentionUnlimited))
	assert.NotNil(t, groundq.WithDeletedRetention(60))
	assert.NotNil(t, groundq.WithBuriedRetention(60))
}

func TestFacadeJobOptions_QueueMetricsCountPushes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := groundq.NewMetrics(reg, "default")
	q, _ := setupTestQueue(t, groundq.WithQueueMetrics(m))
	ctx := context.Background()

	job, err := groundq.NewJob("email.send", map[string]string{"to": "user@example.com"})
	require.NoError(t, err)
	require.NoError(t, q.Push(ctx, job))

	families, err := reg.Gather()
	require.NoError(t, err)

	var pushed float64
	for _, mf := range families {
		if mf.GetName() == "groundq_pushed_total" {
			for _, metric := range mf.GetMetric() {
				pushed += metric.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, 1.0, pushed)
}

func TestFacadeJobOptions_DelayKeepsJobOffQueue(t *testing.T) {
	q, _ := setupTestQueue(t)
	ctx := context.Background()

	job, err := groundq.NewJob("email.send", map[string]string{"to": "user@example.com"})
	require.NoError(t, err)
	require.NoError(t, q.Push(ctx, job, groundq.Delay(10*time.Minute)))

	claimed, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Nil(t, claimed)
}

// ---------------------------------------------------------------------------
// TestFacadeWorkerCreation - worker constructor and options
// ---------------------------------------------------------------------------

func TestFacadeWorkerCreation_NewWorkerNonNil(t *testing.T) {
	q, _ := setupTestQueue(t)
	w := groundq.NewWorker(q)
	assert.NotNil(t, w)
	assert.NotEmpty(t, w.WorkerID())
}

func TestFacadeWorkerCreation_WithAllOptions(t *testing.T) {
	q, _ := setupTestQueue(t)
	w := groundq.NewWorker(q,
		groundq.WithConcurrency(2),
		groundq.WithPollInterval(100*time.Millisecond),
		groundq.WithWorkerID("facade-worker"),
		groundq.WithRateLimit(10, 2),
		groundq.WithMaintenance(groundq.Every(time.Minute)),
		groundq.WithRecoverAfter(30*time.Minute),
	)
	require.NotNil(t, w)
	assert.Equal(t, "facade-worker", w.WorkerID())
}

// ---------------------------------------------------------------------------
// TestFacadeRetryOptions - retry configuration builders
// ---------------------------------------------------------------------------

func TestFacadeRetryOptions_WithStorageRetry(t *testing.T) {
	cfg := groundq.DefaultRetryConfig()
	opt := groundq.WithStorageRetry(cfg)
	assert.NotNil(t, opt)
}

func TestFacadeRetryOptions_WithPopRetry(t *testing.T) {
	cfg := groundq.DefaultRetryConfig()
	opt := groundq.WithPopRetry(cfg)
	assert.NotNil(t, opt)
}

func TestFacadeRetryOptions_WithRetryAttempts(t *testing.T) {
	opt := groundq.WithRetryAttempts(3)
	assert.NotNil(t, opt)
}

func TestFacadeRetryOptions_DisableRetry(t *testing.T) {
	opt := groundq.DisableRetry()
	assert.NotNil(t, opt)
}

func TestFacadeRetryOptions_DefaultRetryConfig(t *testing.T) {
	cfg := groundq.DefaultRetryConfig()
	assert.Greater(t, cfg.MaxAttempts, 0)
	assert.Greater(t, cfg.InitialBackoff, time.Duration(0))
	assert.Greater(t, cfg.MaxBackoff, time.Duration(0))
	assert.Greater(t, cfg.BackoffMultiplier, 0.0)
}

// ---------------------------------------------------------------------------
// TestFacadeScheduleBuilders - schedule constructors return valid schedules
// ---------------------------------------------------------------------------

func TestFacadeScheduleBuilders_Every(t *testing.T) {
	s := groundq.Every(time.Minute)
	require.NotNil(t, s)
	next := s.Next(time.Now())
	assert.True(t, next.After(time.Now()))
}

func TestFacadeScheduleBuilders_Daily(t *testing.T) {
	s := groundq.Daily(9, 0)
	require.NotNil(t, s)
	next := s.Next(time.Now())
	assert.False(t, next.IsZero())
}

func TestFacadeScheduleBuilders_Weekly(t *testing.T) {
	s := groundq.Weekly(time.Monday, 9, 0)
	require.NotNil(t, s)
	next := s.Next(time.Now())
	assert.False(t, next.IsZero())
}

func TestFacadeScheduleBuilders_Cron(t *testing.T) {
	s := groundq.Cron("* * * * *")
	require.NotNil(t, s)
	next := s.Next(time.Now())
	assert.False(t, next.IsZero())
}

func TestFacadeScheduleBuilders_ParseCron(t *testing.T) {
	s, err := groundq.ParseCron("*/5 * * * *")
	require.NoError(t, err)
	assert.NotNil(t, s)

	_, err = groundq.ParseCron("not a cron")
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// TestFacadeErrorHelpers - RetryAfter, RetryAt, and Fail wrappers
// ---------------------------------------------------------------------------

func TestFacadeErrorHelpers_RetryAfter(t *testing.T) {
	base := errors.New("transient error")
	wrapped := groundq.RetryAfter(5*time.Second, base)
	require.NotNil(t, wrapped)
	assert.ErrorContains(t, wrapped, "transient error")

	var re *groundq.RetryError
	assert.True(t, errors.As(wrapped, &re))
	assert.Equal(t, 5*time.Second, re.Delay)
	assert.Equal(t, base, re.Unwrap())
}

func TestFacadeErrorHelpers_RetryAt(t *testing.T) {
	at := time.Now().Add(time.Hour)
	wrapped := groundq.RetryAt(at, errors.New("transient error"))

	var re *groundq.RetryError
	require.True(t, errors.As(wrapped, &re))
	require.NotNil(t, re.At)
	assert.True(t, re.At.Equal(at))
}

func TestFacadeErrorHelpers_Fail(t *testing.T) {
	base := errors.New("bad input")
	wrapped := groundq.Fail(base)
	require.NotNil(t, wrapped)
	assert.ErrorContains(t, wrapped, "bad input")

	var fe *groundq.FailError
	assert.True(t, errors.As(wrapped, &fe))
	assert.Equal(t, base, fe.Unwrap())
}

// ---------------------------------------------------------------------------
// TestFacadeSecurityHelpers - validation and sanitization helpers
// ---------------------------------------------------------------------------

func TestFacadeSecurityHelpers_ValidateClass(t *testing.T) {
	assert.NoError(t, groundq.ValidateClass("email.send"))
	assert.NoError(t, groundq.ValidateClass("processOrder"))

	assert.Error(t, groundq.ValidateClass(""))
	assert.Error(t, groundq.ValidateClass("123starts-with-digit"))
	assert.Error(t, groundq.ValidateClass("has space"))

	long := strings.Repeat("a", groundq.MaxClassLength+1)
	assert.ErrorIs(t, groundq.ValidateClass(long), groundq.ErrClassTooLong)
}

func TestFacadeSecurityHelpers_ValidateQueueName(t *testing.T) {
	assert.NoError(t, groundq.ValidateQueueName("default"))
	assert.NoError(t, groundq.ValidateQueueName("high-priority"))

	assert.Error(t, groundq.ValidateQueueName(""))
	assert.Error(t, groundq.ValidateQueueName("has space"))

	long := strings.Repeat("q", groundq.MaxQueueNameLength+1)
	assert.ErrorIs(t, groundq.ValidateQueueName(long), groundq.ErrQueueNameTooLong)
}

func TestFacadeSecurityHelpers_SanitizeMessage(t *testing.T) {
	assert.Equal(t, "something went wrong", groundq.SanitizeMessage("something went wrong"))

	long := strings.Repeat("x", groundq.MaxMessageLength+100)
	truncated := groundq.SanitizeMessage(long)
	assert.LessOrEqual(t, len([]rune(truncated)), groundq.MaxMessageLength)

	assert.Equal(t, "", groundq.SanitizeMessage(""))
}

func TestFacadeSecurityHelpers_ClampConcurrency(t *testing.T) {
	assert.Equal(t, 5, groundq.ClampConcurrency(5))
	assert.Equal(t, 1, groundq.ClampConcurrency(0))
	assert.Equal(t, 1, groundq.ClampConcurrency(-5))
	assert.Equal(t, groundq.MaxConcurrency, groundq.ClampConcurrency(groundq.MaxConcurrency+1))
}

// ---------------------------------------------------------------------------
// TestFacadePoolConfigs - connection pool configuration constructors
// ---------------------------------------------------------------------------

func TestFacadePoolConfigs_Default(t *testing.T) {
	cfg := groundq.DefaultPoolConfig()
	assert.Greater(t, cfg.MaxOpenConns, 0)
	assert.Greater(t, cfg.MaxIdleConns, 0)
	assert.Greater(t, cfg.ConnMaxLifetime, time.Duration(0))
	assert.Greater(t, cfg.ConnMaxIdleTime, time.Duration(0))
}

func TestFacadePoolConfigs_HighConcurrency(t *testing.T) {
	cfg := groundq.HighConcurrencyPoolConfig()
	assert.Greater(t, cfg.MaxOpenConns, 0)
}

func TestFacadePoolConfigs_ResourceConstrained(t *testing.T) {
	cfg := groundq.ResourceConstrainedPoolConfig()
	assert.Greater(t, cfg.MaxOpenConns, 0)
}

func TestFacadePoolConfigs_PoolOptionBuilders(t *testing.T) {
	assert.NotNil(t, groundq.MaxOpenConns(25))
	assert.NotNil(t, groundq.MaxIdleConns(10))
	assert.NotNil(t, groundq.ConnMaxLifetime(5*time.Minute))
	assert.NotNil(t, groundq.ConnMaxIdleTime(time.Minute))
	assert.NotNil(t, groundq.WithPoolConfig(groundq.DefaultPoolConfig()))
}

func TestFacadePoolConfigs_NewGormStoreWithPool(t *testing.T) {
	db, err := groundq.Open("sqlite", ":memory:")
	require.NoError(t, err)

	store, err := groundq.NewGormStoreWithPool(db,
		groundq.MaxOpenConns(5),
		groundq.MaxIdleConns(2),
	)
	require.NoError(t, err)
	assert.NotNil(t, store)
}

func TestFacadePoolConfigs_ConfigurePool(t *testing.T) {
	db, err := groundq.Open("sqlite", ":memory:")
	require.NoError(t, err)

	err = groundq.ConfigurePool(db, groundq.MaxOpenConns(10))
	require.NoError(t, err)
}

// ---------------------------------------------------------------------------
// TestFacadeMaintenance - sweeper and metrics construction
// ---------------------------------------------------------------------------

func TestFacadeMaintenance_NewSweeper(t *testing.T) {
	q, _ := setupTestQueue(t)
	s := groundq.NewSweeper(q)
	require.NotNil(t, s)
	assert.NoError(t, s.Sweep(context.Background()))
}

func TestFacadeMaintenance_NewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := groundq.NewMetrics(reg, "default")
	assert.NotNil(t, m)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

// ---------------------------------------------------------------------------
// TestFacadeContextHelpers - context extraction helpers
// ---------------------------------------------------------------------------

func TestFacadeContextHelpers_NilWithoutJob(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, groundq.JobFromContext(ctx))
	assert.Zero(t, groundq.JobIDFromContext(ctx))
	assert.Empty(t, groundq.WorkerIDFromContext(ctx))
}

// ---------------------------------------------------------------------------
// TestFacadeConstants - status and retention constants are defined
// ---------------------------------------------------------------------------

func TestFacadeConstants_StatusValues(t *testing.T) {
	assert.Equal(t, groundq.Status(1), groundq.StatusPending)
	assert.Equal(t, groundq.Status(2), groundq.StatusRunning)
	assert.Equal(t, groundq.Status(3), groundq.StatusDeleted)
	assert.Equal(t, groundq.Status(4), groundq.StatusBuried)
}

func TestFacadeConstants_RetentionSentinels(t *testing.T) {
	assert.Equal(t, groundq.Retention(0), groundq.RetentionDisabled)
	assert.Equal(t, groundq.Retention(-1), groundq.RetentionUnlimited)
	assert.True(t, groundq.RetentionDisabled.IsDisabled())
	assert.True(t, groundq.RetentionUnlimited.IsUnlimited())
}

func TestFacadeConstants_Defaults(t *testing.T) {
	assert.Equal(t, groundq.RetentionDisabled, groundq.DefaultDeletedRetention)
	assert.Equal(t, groundq.RetentionUnlimited, groundq.DefaultBuriedRetention)
	assert.Equal(t, 15*time.Minute, groundq.DefaultRecoverAfter)
	assert.Equal(t, "jobs", groundq.DefaultTable)
}
