package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/money"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Ledger    LedgerConfig
	PriceFeed PriceFeedConfig
	Snapshot  SnapshotConfig
	CORS      CORSConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// LedgerConfig holds the simulated account's starting parameters.
type LedgerConfig struct {
	InitialBalance money.Money
}

// PriceFeedConfig holds the quote API endpoint and refresh behavior.
type PriceFeedConfig struct {
	URL      string
	Symbols  []string
	Interval time.Duration
}

// SnapshotConfig holds persistence options. Key is an optional fernet key;
// when set, snapshots are encrypted at rest.
type SnapshotConfig struct {
	Key string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	initialBalance, err := money.ParseMoney(getEnv("INITIAL_BALANCE", "10000"))
	if err != nil {
		return nil, fmt.Errorf("invalid INITIAL_BALANCE: %w", err)
	}
	if !initialBalance.IsPositive() {
		return nil, fmt.Errorf("INITIAL_BALANCE must be positive, got %s", initialBalance)
	}

	interval, err := time.ParseDuration(getEnv("PRICE_FEED_INTERVAL", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PRICE_FEED_INTERVAL: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/trading_ledger.db"),
		},
		Ledger: LedgerConfig{
			InitialBalance: initialBalance,
		},
		PriceFeed: PriceFeedConfig{
			URL:      getEnv("PRICE_FEED_URL", "http://localhost:8090"),
			Symbols:  splitList(getEnv("PRICE_FEED_SYMBOLS", "")),
			Interval: interval,
		},
		Snapshot: SnapshotConfig{
			Key: getEnv("SNAPSHOT_KEY", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// splitList parses a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
