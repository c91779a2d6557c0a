package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	BotToken    string
	DatabaseURL string

	KafkaBrokers   []string
	KafkaTopic     string
	OutboxInterval time.Duration
	OutboxBatch    int

	AdminAddr   string
	LogLevel    string
	PollTimeout int // long-poll timeout, seconds
}

// Load reads the configuration from the environment. Only BOT_TOKEN is
// mandatory; everything else has a usable default.
func Load() (*Config, error) {
	cfg := &Config{
		BotToken:    os.Getenv("BOT_TOKEN"),
		DatabaseURL: getEnv("DATABASE_URL", "bot_data.sqlite3"),

		KafkaBrokers:   splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "songs.published"),
		OutboxInterval: time.Duration(getEnvAsInt("OUTBOX_INTERVAL", 5)) * time.Second,
		OutboxBatch:    getEnvAsInt("OUTBOX_BATCH", 100),

		AdminAddr:   os.Getenv("ADMIN_ADDR"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		PollTimeout: getEnvAsInt("POLL_TIMEOUT", 30),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is empty")
	}
	return cfg, nil
}

// KafkaEnabled reports whether the outbox publisher should run.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
