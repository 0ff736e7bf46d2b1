package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port        string
	PostgresDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers       []string
	KafkaTopic         string
	OutboxPollInterval time.Duration

	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	SessionTTL                 time.Duration
	IdempotencyTTL             time.Duration
	SessionPurgeIntervalMinute int

	Environment string
}

// DefaultKafkaTopic receives sale events when KAFKA_TOPIC is unset.
const DefaultKafkaTopic = "sales.events"

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:               envDefault("PORT", "8080"),
		PostgresDSN:        strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:          strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		KafkaBrokers:       splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:         envDefault("KAFKA_TOPIC", DefaultKafkaTopic),
		OutboxPollInterval: 2 * time.Second,
		TemporalAddress:    envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:  envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:   isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		SessionTTL:         24 * time.Hour,
		IdempotencyTTL:     24 * time.Hour,
		Environment:        envDefault("ENVIRONMENT", "local"),
	}
	var err error
	if cfg.RedisDB, err = envInt("REDIS_DB", 0, 0); err != nil {
		return Config{}, err
	}
	seconds, err := envInt("OUTBOX_POLL_INTERVAL_SECONDS", int(cfg.OutboxPollInterval/time.Second), 1)
	if err != nil {
		return Config{}, err
	}
	cfg.OutboxPollInterval = time.Duration(seconds) * time.Second
	hours, err := envInt("SESSION_TTL_HOURS", int(cfg.SessionTTL/time.Hour), 1)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTTL = time.Duration(hours) * time.Hour
	if hours, err = envInt("IDEMPOTENCY_TTL_HOURS", int(cfg.IdempotencyTTL/time.Hour), 1); err != nil {
		return Config{}, err
	}
	cfg.IdempotencyTTL = time.Duration(hours) * time.Hour
	if cfg.SessionPurgeIntervalMinute, err = envInt("SESSION_PURGE_INTERVAL_MINUTES", 0, 1); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// KafkaEnabled reports whether sale events should be relayed to Kafka.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// envInt parses key as an integer no lower than floor; unset keys yield fallback.
func envInt(key string, fallback, floor int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < floor {
		return 0, fmt.Errorf("%s must be an integer >= %d", key, floor)
	}
	return value, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
