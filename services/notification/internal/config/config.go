package config

import (
	"fmt"

	pkgconfig "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/config"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/database"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/httpclient"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/tracing"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/notification/internal/sender/push"
)

// Senders.
const (
	SenderPush = "push"
	SenderLog  = "log"
)

// Config holds all configuration for the notification service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPPort      int    `env:"NOTIFICATION_HTTP_PORT" envDefault:"8003"`
	Sender        string `env:"NOTIFICATION_SENDER" envDefault:"push"`
	ConsumerGroup string `env:"NOTIFICATION_CONSUMER_GROUP" envDefault:"notification-service"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	Redis      database.RedisConfig `envPrefix:"REDIS_"`
	Push       push.Config          `envPrefix:"PUSH_"`
	HTTPClient httpclient.Config    `envPrefix:"PUSH_HTTP_"`
	Tracing    tracing.Config       `envPrefix:"OTEL_"`
}

// Load reads configuration from the environment, after any dotenv files.
func Load(dotenvFiles ...string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, dotenvFiles...); err != nil {
		return nil, fmt.Errorf("load notification config: %w", err)
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
	switch c.Sender {
	case SenderPush:
		if c.Push.URL == "" {
			return fmt.Errorf("PUSH_GATEWAY_URL is required")
		}
	case SenderLog:
	default:
		return fmt.Errorf("NOTIFICATION_SENDER must be %q or %q, got %q", SenderPush, SenderLog, c.Sender)
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.ConsumerGroup == "" {
		return fmt.Errorf("NOTIFICATION_CONSUMER_GROUP is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}
	return nil
}
