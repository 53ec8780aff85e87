package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"wagerledger/database"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseName string `env:"DATABASE_NAME"`

	// Ledger configuration
	StartingBalance     int64         `env:"STARTING_BALANCE" envDefault:"1000"`
	MinBetAmount        int64         `env:"MIN_BET_AMOUNT" envDefault:"10"`
	DailyRewardAmount   int64         `env:"DAILY_REWARD_AMOUNT" envDefault:"100"`
	DailyRewardCooldown time.Duration `env:"DAILY_REWARD_COOLDOWN" envDefault:"24h"`

	// Operators allowed to adjust balances
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	// Unit of work tuning
	OperationTimeout time.Duration `env:"OPERATION_TIMEOUT" envDefault:"5s"`
	MaxRetryElapsed  time.Duration `env:"MAX_RETRY_ELAPSED" envDefault:"2s"`

	// NATS configuration, empty disables event publishing
	NATSServers string `env:"NATS_SERVERS"`

	// Redis configuration, empty makes presentation refresh synchronous
	RedisAddr       string        `env:"REDIS_ADDR"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"2s"`

	// Discord configuration, empty token logs presentation instead
	DiscordToken string `env:"DISCORD_TOKEN"`

	// Health and metrics endpoint
	HealthPort int `env:"HEALTH_PORT" envDefault:"8080"`

	// OpenTelemetry configuration
	OTelEnabled              bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTelServiceName          string `env:"OTEL_SERVICE_NAME" envDefault:"wagerledger"`
	OTelExporterType         string `env:"OTEL_EXPORTER_TYPE" envDefault:"none"`
	OTelOTLPEndpoint         string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelExportIntervalMillis int    `env:"OTEL_EXPORT_INTERVAL_MILLIS" envDefault:"60000"`

	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = Load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL combines the base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsAdmin reports whether the user may run operator-only commands
func (c *Config) IsAdmin(userID int64) bool {
	return slices.Contains(c.AdminIDs, userID)
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads configuration from an optional .env file and the environment
func Load() (*Config, error) {
	// Missing .env is the normal case in containers
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that the ledger depends on
func (c *Config) Validate() error {
	if c.StartingBalance < 0 {
		return fmt.Errorf("STARTING_BALANCE must not be negative, got %d", c.StartingBalance)
	}
	if c.MinBetAmount < 1 {
		return fmt.Errorf("MIN_BET_AMOUNT must be at least 1, got %d", c.MinBetAmount)
	}
	if c.DailyRewardAmount < 0 {
		return fmt.Errorf("DAILY_REWARD_AMOUNT must not be negative, got %d", c.DailyRewardAmount)
	}
	if c.OperationTimeout <= 0 {
		return fmt.Errorf("OPERATION_TIMEOUT must be positive")
	}

	if c.Environment != "test" {
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
			return fmt.Errorf("DATABASE_NAME cannot be blank when provided")
		}
	}

	switch c.OTelExporterType {
	case "none", "console", "otlp":
	default:
		return fmt.Errorf("unknown OTEL_EXPORTER_TYPE %q", c.OTelExporterType)
	}
	return nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:         "test",
		LogLevel:            "debug",
		StartingBalance:     1000,
		MinBetAmount:        10,
		DailyRewardAmount:   100,
		DailyRewardCooldown: 24 * time.Hour,
		AdminIDs:            []int64{999999},
		OperationTimeout:    5 * time.Second,
		MaxRetryElapsed:     2 * time.Second,
		RefreshInterval:     100 * time.Millisecond,
		OTelExporterType:    "none",
		OTelServiceName:     "wagerledger-test",
	}
}
