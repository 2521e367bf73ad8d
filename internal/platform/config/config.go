package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Server captures process level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
	Log             LogConfig
	DatabaseURL     string
	Redis           RedisConfig
	SMTP            SMTPConfig
	Kafka           KafkaConfig
	Notify          NotifyConfig
	RateLimit       RateLimitConfig
	BcryptCost      int
}

// LogConfig selects slog level and handler format.
type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// RedisConfig configures the shared Redis client. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SMTPConfig configures the activation mail relay. An empty Host disables SMTP.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// KafkaConfig configures the notification topic. Empty Brokers disables Kafka.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// NotifyConfig sizes the activation email dispatcher.
type NotifyConfig struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// RateLimitConfig bounds signup attempts per client IP.
type RateLimitConfig struct {
	Disabled bool
	Limit    int
	Window   time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:            envString("SIGNUP_ADDR", ":8080"),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Log: LogConfig{
			Level:  envString("LOG_LEVEL", "info"),
			Format: envString("LOG_FORMAT", "json"),
		},
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     envString("SMTP_FROM", "no-reply@signup.local"),
		},
		Kafka: KafkaConfig{
			Brokers: envList("KAFKA_BROKERS"),
			Topic:   envString("KAFKA_NOTIFICATION_TOPIC", "signup.notifications"),
		},
		Notify: NotifyConfig{
			Workers:   envPositiveInt("NOTIFY_WORKERS", 2),
			QueueSize: envPositiveInt("NOTIFY_QUEUE_SIZE", 256),
			Timeout:   envPositiveDuration("NOTIFY_TIMEOUT", 10*time.Second),
		},
		RateLimit: RateLimitConfig{
			Disabled: os.Getenv("SIGNUP_RATE_LIMIT_DISABLED") == "true",
			Limit:    envPositiveInt("SIGNUP_RATE_LIMIT", 20),
			Window:   envPositiveDuration("SIGNUP_RATE_WINDOW", time.Minute),
		},
		BcryptCost: envInt("BCRYPT_COST", bcrypt.DefaultCost),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// envPositiveInt is envInt for settings where zero or less is meaningless.
func envPositiveInt(key string, fallback int) int {
	if n := envInt(key, fallback); n > 0 {
		return n
	}
	return fallback
}

func envPositiveDuration(key string, fallback time.Duration) time.Duration {
	if d := envDuration(key, fallback); d > 0 {
		return d
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
