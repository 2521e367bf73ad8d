package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"SIGNUP_ADDR", "DATABASE_URL", "REDIS_URL", "SMTP_HOST", "KAFKA_BROKERS", "SIGNUP_RATE_LIMIT", "BCRYPT_COST"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.SMTP.Host)
	assert.Nil(t, cfg.Kafka.Brokers)
	assert.Equal(t, 20, cfg.RateLimit.Limit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SIGNUP_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("SIGNUP_RATE_WINDOW", "30s")
	t.Setenv("NOTIFY_WORKERS", "not-a-number")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, 2, cfg.Notify.Workers, "invalid ints fall back to the default")
}

func TestFromEnvNonPositiveFallsBack(t *testing.T) {
	tests := []struct {
		limit  string
		window string
	}{
		{"0", "0s"},
		{"-5", "-1m"},
	}
	for _, tt := range tests {
		t.Run(tt.limit+"/"+tt.window, func(t *testing.T) {
			t.Setenv("SIGNUP_RATE_LIMIT", tt.limit)
			t.Setenv("SIGNUP_RATE_WINDOW", tt.window)
			t.Setenv("NOTIFY_WORKERS", tt.limit)

			cfg := FromEnv()

			assert.Equal(t, 20, cfg.RateLimit.Limit)
			assert.Equal(t, time.Minute, cfg.RateLimit.Window)
			assert.Equal(t, 2, cfg.Notify.Workers)
		})
	}
}
