package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8003, cfg.HTTPPort)
	assert.Equal(t, SenderPush, cfg.Sender)
	assert.Equal(t, "notification-service", cfg.ConsumerGroup)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "https://exp.host/--/api/v2/push/send", cfg.Push.URL)
	assert.Empty(t, cfg.Push.AccessToken)
	assert.Equal(t, 10*time.Second, cfg.HTTPClient.Timeout)
	assert.Equal(t, 2, cfg.HTTPClient.MaxRetries)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("NOTIFICATION_SENDER", "log")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("PUSH_ACCESS_TOKEN", "expo-token")
	t.Setenv("PUSH_HTTP_MAX_RETRIES", "0")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SenderLog, cfg.Sender)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "expo-token", cfg.Push.AccessToken)
	assert.Equal(t, 0, cfg.HTTPClient.MaxRetries)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		envs    map[string]string
		wantErr string
	}{
		{"bad sender", map[string]string{"NOTIFICATION_SENDER": "sms"}, "NOTIFICATION_SENDER"},
		{"bad port", map[string]string{"NOTIFICATION_HTTP_PORT": "0"}, "invalid HTTP port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envs {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
