package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/auth"
	pkgconfig "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/config"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/database"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/tracing"
)

// Store drivers.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all configuration for the booking service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPPort int `env:"BOOKING_HTTP_PORT" envDefault:"8001"`

	// StoreDriver selects PostgreSQL or the in-process store for local runs.
	StoreDriver string `env:"BOOKING_STORE" envDefault:"postgres"`

	// CancelledBlocksSlot keeps a cancelled reservation's slot reserved.
	CancelledBlocksSlot bool `env:"BOOKING_CANCELLED_BLOCKS_SLOT" envDefault:"true"`

	// Timezone is the salon-local zone calendar days are computed in.
	Timezone         string `env:"BOOKING_TIMEZONE" envDefault:"Asia/Seoul"`
	ReminderSchedule string `env:"BOOKING_REMINDER_SCHEDULE" envDefault:"0 18 * * *"`

	CommitRateRPS   float64 `env:"BOOKING_COMMIT_RATE_RPS" envDefault:"1"`
	CommitRateBurst int     `env:"BOOKING_COMMIT_RATE_BURST" envDefault:"5"`

	SlowQueryThreshold time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	KafkaBrokers       []string      `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	Postgres database.PostgresConfig `envPrefix:"POSTGRES_"`
	JWT      auth.Config             `envPrefix:"JWT_"`
	Tracing  tracing.Config          `envPrefix:"OTEL_"`

	location *time.Location
}

// Load reads configuration from the environment, after any dotenv files.
func Load(dotenvFiles ...string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, dotenvFiles...); err != nil {
		return nil, fmt.Errorf("load booking config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.StoreDriver {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("BOOKING_STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.StoreDriver)
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.CommitRateRPS <= 0 || c.CommitRateBurst < 1 {
		return fmt.Errorf("commit rate limit must be positive")
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid BOOKING_TIMEZONE %q: %w", c.Timezone, err)
	}
	c.location = loc

	if _, err := cron.ParseStandard(c.ReminderSchedule); err != nil {
		return fmt.Errorf("invalid BOOKING_REMINDER_SCHEDULE %q: %w", c.ReminderSchedule, err)
	}
	return nil
}

// Location is the parsed Timezone.
func (c *Config) Location() *time.Location {
	return c.location
}
