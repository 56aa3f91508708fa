package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Identity (shared secret with the authentication service)
	IdentitySecret string

	// Game server manager
	GameServerExternalHost      string
	GameServerManagerURL        string
	GameServerManagerServiceKey string
	SpawnTimeout                time.Duration

	// Matchmaking
	QueueModes  []string
	MinSize     int
	DesiredSize int
	MaxWait     time.Duration

	// CORS
	CORSAllowedOrigins []string

	// Redis (optional, enables distributed rate limiting)
	RedisURL string
}

func Load() (*Config, error) {
	// Load .env if present.
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "8100"),
		Env:          getEnv("ENV", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		SpawnTimeout: parseDuration(getEnv("SPAWN_TIMEOUT", "5s"), 5*time.Second),
		QueueModes:   splitList(getEnv("QUEUE_MODES", "solo")),
		MinSize:      parseInt(getEnv("MATCH_MIN_SIZE", "2"), 2),
		DesiredSize:  parseInt(getEnv("MATCH_DESIRED_SIZE", "4"), 4),
		MaxWait:      parseDuration(getEnv("MATCH_MAX_WAIT", "1m"), time.Minute),
		RedisURL:     getEnv("REDIS_URL", ""),
	}

	var err error
	if cfg.IdentitySecret, err = getSecret("IDENTITY_SECRET"); err != nil {
		return nil, err
	}
	if cfg.GameServerExternalHost, err = getSecret("GAME_SERVER_EXTERNAL_HOST"); err != nil {
		return nil, err
	}
	if cfg.GameServerManagerURL, err = getSecret("GAME_SERVER_MANAGER_URL"); err != nil {
		return nil, err
	}
	if cfg.GameServerManagerServiceKey, err = getSecret("GAME_SERVER_MANAGER_SERVICE_KEY"); err != nil {
		return nil, err
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.CORSAllowedOrigins = splitList(origins)
	}

	if cfg.MinSize < 1 {
		return nil, fmt.Errorf("MATCH_MIN_SIZE must be at least 1, got %d", cfg.MinSize)
	}
	if cfg.MinSize > cfg.DesiredSize {
		return nil, fmt.Errorf("MATCH_MIN_SIZE (%d) must not exceed MATCH_DESIRED_SIZE (%d)",
			cfg.MinSize, cfg.DesiredSize)
	}
	if len(cfg.QueueModes) == 0 {
		return nil, fmt.Errorf("QUEUE_MODES must name at least one queue")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getSecret reads VAR directly, or the file named by VAR_FILE. Deployments
// mount secrets as files; local runs set the variable itself.
func getSecret(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	file := os.Getenv(key + "_FILE")
	if file == "" {
		return "", fmt.Errorf("expected either %s or %s_FILE to be set", key, key)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read %s_FILE: %w", key, err)
	}

	return strings.TrimSpace(string(data)), nil
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}

func parseInt(s string, defaultValue int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
