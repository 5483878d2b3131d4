package db

import "time"

// Config holds PostgreSQL connection parameters loaded from the environment.
type Config struct {
	URL             string `env:"DATABASE_URL,required"`
	MigrationsTable string `env:"DATABASE_MIGRATIONS_TABLE" envDefault:"schema_migrations"`

	MaxConns          int32         `env:"DATABASE_MAX_CONNS" envDefault:"5"`
	MinConns          int32         `env:"DATABASE_MIN_CONNS" envDefault:"1"`
	HealthCheckPeriod time.Duration `env:"DATABASE_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"DATABASE_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"DATABASE_MAX_CONN_LIFETIME" envDefault:"30m"`

	// Startup retries back off linearly: attempt n waits n*RetryInterval.
	RetryAttempts int           `env:"DATABASE_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"DATABASE_RETRY_INTERVAL" envDefault:"2s"`
}
