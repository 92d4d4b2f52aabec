package config

import (
	"fmt"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/auth"
	pkgconfig "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/config"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/database"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/tracing"
)

// Store drivers.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config holds all configuration for the review service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPPort    int    `env:"REVIEW_HTTP_PORT" envDefault:"8002"`
	StoreDriver string `env:"REVIEW_STORE" envDefault:"mongo"`

	// AggregatorGroup is the consumer group that runs rating recomputation.
	AggregatorGroup string `env:"REVIEW_AGGREGATOR_GROUP" envDefault:"review-rating-aggregator"`
	// DirectoryGroup consumes shop.created and reservation.created.
	DirectoryGroup string `env:"REVIEW_DIRECTORY_GROUP" envDefault:"review-directory"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	KafkaBrokers       []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	Mongo   database.MongoConfig `envPrefix:"MONGO_"`
	JWT     auth.Config          `envPrefix:"JWT_"`
	Tracing tracing.Config       `envPrefix:"OTEL_"`
}

// Load reads configuration from the environment, after any dotenv files.
func Load(dotenvFiles ...string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, dotenvFiles...); err != nil {
		return nil, fmt.Errorf("load review config: %w", err)
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
	case StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("REVIEW_STORE must be %q or %q, got %q", StoreMongo, StoreMemory, c.StoreDriver)
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.AggregatorGroup == "" {
		return fmt.Errorf("REVIEW_AGGREGATOR_GROUP is required")
	}
	if c.DirectoryGroup == "" || c.DirectoryGroup == c.AggregatorGroup {
		return fmt.Errorf("REVIEW_DIRECTORY_GROUP is required and must differ from REVIEW_AGGREGATOR_GROUP")
	}
	if c.StoreDriver == StoreMongo && c.Mongo.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	return nil
}
