package infra

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"slotarena"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"slotarena"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"slotarena"`

	// JWT
	JWTSecret      string `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTUserExpiry  string `env:"JWT_USER_EXPIRY" envDefault:"24h"`
	JWTAdminExpiry string `env:"JWT_ADMIN_EXPIRY" envDefault:"12h"`

	// Server
	APIPort int `env:"API_PORT" envDefault:"3200"`

	// Wallet bounds (integer minor units)
	MinDeposit  int64 `env:"MIN_DEPOSIT" envDefault:"10"`
	MaxDeposit  int64 `env:"MAX_DEPOSIT" envDefault:"10000"`
	MinWithdraw int64 `env:"MIN_WITHDRAW" envDefault:"50"`

	// Kafka
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`

	// Booking rate limit (requests per identity per minute)
	BookingRateLimit int `env:"BOOKING_RATE_LIMIT" envDefault:"30"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for insecure or inconsistent configuration.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass the secret checks (local dev only).
func (c *Config) Validate() error {
	if c.MinDeposit <= 0 || c.MaxDeposit < c.MinDeposit {
		return fmt.Errorf("deposit bounds are inconsistent: min=%d max=%d", c.MinDeposit, c.MaxDeposit)
	}
	if c.MinWithdraw <= 0 {
		return fmt.Errorf("MIN_WITHDRAW must be positive, got %d", c.MinWithdraw)
	}
	if c.AllowInsecureDefaults {
		return nil
	}
	if c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}
