package config

import (
	"time"

	"github.com/groundq/groundq/pkg/maintain"
	"github.com/groundq/groundq/pkg/storage"
)

const (
	defaultDriver = "sqlite"
	defaultDSN    = "groundq.db"
	defaultTable  = storage.DefaultTable

	defaultMaxOpenConns           = 25
	defaultMaxIdleConns           = 10
	defaultConnMaxLifetimeMinutes = 5
	defaultConnMaxIdleMinutes     = 1

	defaultQueueName        = "default"
	defaultDeletedRetention = 0
	defaultBuriedRetention  = -1

	defaultConcurrency    = 4
	defaultPollIntervalMS = 1000
	defaultRateBurst      = 1

	defaultEveryMinutes        = 1
	defaultRecoverAfterMinutes = int(maintain.DefaultRecoverAfter / time.Minute)

	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

// Default returns the built-in configuration, used when no file exists.
func Default() Config {
	return Config{
		Database: Database{
			Driver:                 defaultDriver,
			DSN:                    defaultDSN,
			Table:                  defaultTable,
			MaxOpenConns:           defaultMaxOpenConns,
			MaxIdleConns:           defaultMaxIdleConns,
			ConnMaxLifetimeMinutes: defaultConnMaxLifetimeMinutes,
			ConnMaxIdleMinutes:     defaultConnMaxIdleMinutes,
		},
		Queue: Queue{
			Name:             defaultQueueName,
			DeletedRetention: defaultDeletedRetention,
			BuriedRetention:  defaultBuriedRetention,
		},
		Worker: Worker{
			Concurrency:    defaultConcurrency,
			PollIntervalMS: defaultPollIntervalMS,
			RateBurst:      defaultRateBurst,
		},
		Maintenance: Maintenance{
			EveryMinutes:        defaultEveryMinutes,
			RecoverAfterMinutes: defaultRecoverAfterMinutes,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
