// Package config loads the process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/lemamita/mamita/internal/llm"
	"github.com/lemamita/mamita/pkg/db"
	"github.com/lemamita/mamita/pkg/logger"
	"github.com/lemamita/mamita/pkg/mailer/smtp"
	"github.com/lemamita/mamita/pkg/redis"
	"github.com/lemamita/mamita/pkg/storage"
)

var (
	ErrLoad            = errors.New("config: failed to parse environment")
	ErrNoAdminToken    = errors.New("config: ADMIN_TOKEN is required to serve the admin API")
	ErrShortAdminToken = errors.New("config: ADMIN_TOKEN must be at least 16 characters")
)

// HTTP configures the admin server.
type HTTP struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	AdminToken      string        `env:"ADMIN_TOKEN"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"3m"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Validate checks the settings only the server needs.
func (h HTTP) Validate() error {
	switch {
	case h.AdminToken == "":
		return ErrNoAdminToken
	case len(h.AdminToken) < 16:
		return ErrShortAdminToken
	}
	return nil
}

// Config aggregates every component setting.
type Config struct {
	HTTP    HTTP
	DB      db.Config
	Redis   redis.Config
	SMTP    smtp.Config
	LLM     llm.Config
	Storage storage.Config
	Log     logger.Config

	// PreviewTTL bounds how long the last preview of an outlet is kept.
	PreviewTTL time.Duration `env:"PREVIEW_TTL" envDefault:"1h"`
	// SendLockTTL caps how long a crashed send can block its outlet.
	SendLockTTL time.Duration `env:"SEND_LOCK_TTL" envDefault:"10m"`
}

// Load parses the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses vars instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return cfg, nil
}
