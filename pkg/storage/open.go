package storage

import (
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the database named by driver ("sqlite", "postgres", or
// "mysql") and configures its connection pool. The GORM logger is silenced;
// callers observe the store through their own logging.
func Open(driver, dsn string, opts ...PoolOption) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite", "sqlite3":
		dsn = sqliteDSN(dsn)
		dialector = sqlite.Open(dsn)
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("groundq: unknown database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if driver == "sqlite" || driver == "sqlite3" {
		// An in-memory SQLite database exists per connection; more than
		// one connection would see more than one database.
		if strings.Contains(dsn, ":memory:") {
			opts = append(opts, MaxOpenConns(1), MaxIdleConns(1))
		}
	}

	if err := ConfigurePool(db, opts...); err != nil {
		return nil, err
	}
	return db, nil
}

// sqliteDSN appends the journal and busy-timeout parameters concurrent
// writers need, unless the caller already set parameters of their own.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "?") {
		return dsn
	}
	return dsn + "?_journal_mode=WAL&_busy_timeout=5000"
}
