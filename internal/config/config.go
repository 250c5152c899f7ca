package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// maxMatchListLimit is the hard ceiling on top-N match reads.
const maxMatchListLimit = 50

type Config struct {
	Port                  string
	DBUrl                 string
	JWTSecret             string
	AppEnv                string
	LogLevel              string
	MatchRefreshWorkers   int
	MatchListDefaultLimit int
	MatchListMaxLimit     int

	// Listing photos. An empty StorageBucket disables uploads.
	StorageBucket    string
	StorageRegion    string
	StorageEndpoint  string
	StoragePublicURL string

	// EnvFileLoaded reports whether a .env file was found. Logging is not
	// set up yet when the config loads, so callers report it.
	EnvFileLoaded bool
}

func LoadConfig() (*Config, error) {
	envLoaded := godotenv.Load() == nil

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		DBUrl:                 getEnv("DB_URL", ""),
		JWTSecret:             jwtSecret,
		AppEnv:                normalizeEnv(getEnv("APP_ENV", "production")),
		LogLevel:              strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", ""))),
		MatchRefreshWorkers:   getEnvInt("MATCH_REFRESH_WORKERS", 1),
		MatchListDefaultLimit: getEnvInt("MATCH_LIST_DEFAULT_LIMIT", 20),
		MatchListMaxLimit:     getEnvInt("MATCH_LIST_MAX_LIMIT", 50),
		StorageBucket:         strings.TrimSpace(getEnv("STORAGE_BUCKET", "")),
		StorageRegion:         getEnv("STORAGE_REGION", "eu-central-1"),
		StorageEndpoint:       strings.TrimSpace(getEnv("STORAGE_ENDPOINT", "")),
		StoragePublicURL:      strings.TrimSpace(getEnv("STORAGE_PUBLIC_URL", "")),
		EnvFileLoaded:         envLoaded,
	}

	if cfg.MatchListMaxLimit > maxMatchListLimit {
		cfg.MatchListMaxLimit = maxMatchListLimit
	}
	if cfg.MatchListDefaultLimit > cfg.MatchListMaxLimit {
		return nil, fmt.Errorf(
			"MATCH_LIST_DEFAULT_LIMIT (%d) exceeds MATCH_LIST_MAX_LIMIT (%d)",
			cfg.MatchListDefaultLimit,
			cfg.MatchListMaxLimit,
		)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns fallback for missing, malformed or non-positive values.
func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}
