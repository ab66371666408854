package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all server settings, loaded from environment variables.
type Config struct {
	Port           string
	AllowedOrigins []string
	AppEnv         string
	LogLevel       string

	MaxRooms        int
	MaxRoomSize     int
	MaxMessageSize  int
	MaxSnapshotSize int

	MessagesPerSecond float64
	BurstSize         int

	JoinTimeout     time.Duration
	CleanupInterval time.Duration
	RoomMaxIdle     time.Duration
}

// Load reads configuration from the environment, with a local .env as
// an optional override for development.
func Load() *Config {
	_ = godotenv.Load() // missing .env is fine

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		AppEnv:            getEnv("APP_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		MaxRooms:          getEnvInt("MAX_ROOMS", 500),
		MaxRoomSize:       getEnvInt("MAX_ROOM_SIZE", 25),
		MaxMessageSize:    getEnvInt("MAX_MESSAGE_SIZE", 64*1024),
		MaxSnapshotSize:   getEnvInt("MAX_SNAPSHOT_SIZE", 4*1024*1024),
		MessagesPerSecond: getEnvFloat("MESSAGES_PER_SECOND", 30),
		BurstSize:         getEnvInt("BURST_SIZE", 10),
		JoinTimeout:       getEnvDuration("JOIN_TIMEOUT", 5*time.Second),
		CleanupInterval:   getEnvDuration("CLEANUP_INTERVAL", 15*time.Minute),
		RoomMaxIdle:       getEnvDuration("ROOM_MAX_IDLE", 1*time.Hour),
	}

	cfg.AllowedOrigins = splitCSV(getEnv("DOMAINS", "http://localhost:3000"))

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg
}

// getEnv returns the env var or a default
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

// splitCSV trims and filters a comma-separated list
func splitCSV(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
