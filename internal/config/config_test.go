package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundq/groundq/internal/config"
	"github.com/groundq/groundq/pkg/core"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "groundq.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_DefaultsWhenNoFileExists(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NotEmpty(t, resolved)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "jobs", cfg.Database.Table)
	assert.Equal(t, "default", cfg.Queue.Name)
	assert.Equal(t, 4, cfg.Worker.Concurrency)
	assert.Equal(t, time.Second, cfg.PollInterval())
	assert.Equal(t, time.Minute, cfg.SweepEvery())
	assert.Equal(t, 15*time.Minute, cfg.RecoverAfter())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[database]
driver = "postgres"
dsn = "host=localhost user=app dbname=jobs"
table = "work_items"

[queue]
name = "payments"
deleted_retention = 60
buried_retention = 1440

[worker]
concurrency = 8
poll_interval_ms = 250
rate_limit = 50.0
rate_burst = 5

  [worker.commands]
  "email.send" = ["/usr/local/bin/send-email", "-v"]

[maintenance]
every_minutes = 5
recover_after_minutes = 30

[logging]
level = "debug"
format = "json"

[metrics]
addr = ":9090"
`)

	cfg, resolved, exists, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, path, resolved)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "work_items", cfg.Database.Table)
	assert.Equal(t, "payments", cfg.Queue.Name)
	assert.Equal(t, core.Retention(60), cfg.DeletedRetention())
	assert.Equal(t, core.Retention(1440), cfg.BuriedRetention())
	assert.Equal(t, 8, cfg.Worker.Concurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval())
	assert.Equal(t, 50.0, cfg.Worker.RateLimit)
	assert.Equal(t, []string{"/usr/local/bin/send-email", "-v"}, cfg.Worker.Commands["email.send"])
	assert.Equal(t, 5*time.Minute, cfg.SweepEvery())
	assert.Equal(t, 30*time.Minute, cfg.RecoverAfter())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)

	// Sections the file omits keep their defaults.
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[database]
dsn = "from-file.db"

[worker]
concurrency = 2
`)
	t.Setenv("GROUNDQ_DATABASE_DSN", "from-env.db")
	t.Setenv("GROUNDQ_WORKER_CONCURRENCY", "16")
	t.Setenv("GROUNDQ_LOG_LEVEL", "warn")

	cfg, _, _, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Database.DSN)
	assert.Equal(t, 16, cfg.Worker.Concurrency)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_NormalizesCaseAndBlanks(t *testing.T) {
	path := writeConfig(t, `
[database]
driver = "SQLite"
table = "  "

[logging]
level = "INFO"
format = " JSON "
`)

	cfg, _, _, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "jobs", cfg.Database.Table)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, `
[database]
driver = "oracle"
`)

	_, _, _, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.driver")
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		toml string
		want string
	}{
		{"zero concurrency", "[worker]\nconcurrency = 0\n", "worker.concurrency"},
		{"negative rate", "[worker]\nrate_limit = -1.0\n", "worker.rate_limit"},
		{"bad retention", "[queue]\ndeleted_retention = -2\n", "queue.deleted_retention"},
		{"bad queue name", "[queue]\nname = \"9lives\"\n", "queue.name"},
		{"zero sweep", "[maintenance]\nevery_minutes = 0\n", "maintenance.every_minutes"},
		{"bad level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
		{"bad format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"bad command class", "[worker.commands]\n\"bad class!\" = [\"/bin/true\"]\n", "worker.commands"},
		{"empty command", "[worker.commands]\n\"email.send\" = []\n", "worker.commands.email.send"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := config.Load(writeConfig(t, tc.toml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_ExpandsSqliteHomePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := writeConfig(t, `
[database]
dsn = "~/data/groundq.db"
`)

	cfg, _, _, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data", "groundq.db"), cfg.Database.DSN)
}

func TestCreateSample_RoundTrips(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, config.CreateSample(target))

	cfg, resolved, exists, err := config.Load(target)
	require.NoError(t, err, "the shipped sample must parse and validate")
	assert.True(t, exists)
	assert.Equal(t, target, resolved)
	assert.Equal(t, config.Default().Database.Driver, cfg.Database.Driver)
	assert.Equal(t, config.Default().Worker.Concurrency, cfg.Worker.Concurrency)
}

func TestPoolConfig_MapsDatabaseSection(t *testing.T) {
	path := writeConfig(t, `
[database]
max_open_conns = 50
max_idle_conns = 20
conn_max_lifetime_minutes = 10
conn_max_idle_minutes = 2
`)

	cfg, _, _, err := config.Load(path)
	require.NoError(t, err)

	pool := cfg.PoolConfig()
	assert.Equal(t, 50, pool.MaxOpenConns)
	assert.Equal(t, 20, pool.MaxIdleConns)
	assert.Equal(t, 10*time.Minute, pool.ConnMaxLifetime)
	assert.Equal(t, 2*time.Minute, pool.ConnMaxIdleTime)
}
