package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Steam API quota: at most QuotaCalls requests in any rolling QuotaWindow.
	QuotaCalls  int
	QuotaWindow time.Duration

	MaxConcurrency int
	SliceDivisor   int
	MaxRetries     int
	HTTPTimeout    time.Duration
	Cooldown       time.Duration

	DetailsPath string
	CatalogPath string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	ChromeBin string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		// The Steam store API allows ~200 requests per 5 minutes; stay under it.
		QuotaCalls:  getEnvInt("STEAM_QUOTA_CALLS", 195),
		QuotaWindow: time.Duration(getEnvInt("STEAM_QUOTA_WINDOW_S", 310)) * time.Second,

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 8),
		SliceDivisor:   getEnvInt("SLICE_DIVISOR", 190),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		HTTPTimeout:    time.Duration(getEnvInt("HTTP_TIMEOUT_S", 20)) * time.Second,
		Cooldown:       time.Duration(getEnvInt("COOLDOWN_S", 310)) * time.Second,

		DetailsPath: getEnv("DETAILS_PATH", "./data/all_steam_details.json"),
		CatalogPath: getEnv("CATALOG_PATH", "./data/all_games.json"),

		PostgresEnabled:  getEnv("POSTGRES_ENABLED", "") != "",
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "games"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "games123"),
		PostgresDB:       getEnv("POSTGRES_DB", "games_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		ChromeBin: getEnv("CHROME_BIN", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
