package postgres

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the connection and pool settings for the Postgres
// InvestigationRepository adapter, mirroring the teacher's
// pkg/database.Config shape (split Host/Port/User/Password/Database rather
// than a bare DSN, so each field can be independently defaulted/validated).
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DSN builds the libpq connection string pgxpool.ParseConfig accepts.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Validate checks the configuration for obviously broken settings before a
// connection attempt is made, mirroring the teacher's database.Config.Validate.
func (c Config) Validate() error {
	if c.Password == "" {
		return fmt.Errorf("postgres: password is required")
	}
	if c.MinConns > c.MaxConns {
		return fmt.Errorf("postgres: min conns (%d) cannot exceed max conns (%d)", c.MinConns, c.MaxConns)
	}
	if c.MaxConns < 1 {
		return fmt.Errorf("postgres: max conns must be at least 1")
	}
	return nil
}

// LoadConfigFromEnv reads connection settings from SENTINELA_DB_* env vars
// with production-ready defaults, mirroring the teacher's
// database.LoadConfigFromEnv.
func LoadConfigFromEnv() (Config, error) {
	port, err := strconv.Atoi(getEnvOrDefault("SENTINELA_DB_PORT", "5432"))
	if err != nil {
		return Config{}, fmt.Errorf("postgres: invalid SENTINELA_DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnvOrDefault("SENTINELA_DB_MAX_CONNS", "10"))
	if err != nil {
		return Config{}, fmt.Errorf("postgres: invalid SENTINELA_DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnvOrDefault("SENTINELA_DB_MIN_CONNS", "2"))
	if err != nil {
		return Config{}, fmt.Errorf("postgres: invalid SENTINELA_DB_MIN_CONNS: %w", err)
	}
	maxLifetime, err := time.ParseDuration(getEnvOrDefault("SENTINELA_DB_MAX_CONN_LIFETIME", "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("postgres: invalid SENTINELA_DB_MAX_CONN_LIFETIME: %w", err)
	}
	maxIdleTime, err := time.ParseDuration(getEnvOrDefault("SENTINELA_DB_MAX_CONN_IDLE_TIME", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("postgres: invalid SENTINELA_DB_MAX_CONN_IDLE_TIME: %w", err)
	}

	cfg := Config{
		Host:            getEnvOrDefault("SENTINELA_DB_HOST", "localhost"),
		Port:            port,
		User:            getEnvOrDefault("SENTINELA_DB_USER", "sentinela"),
		Password:        os.Getenv("SENTINELA_DB_PASSWORD"),
		Database:        getEnvOrDefault("SENTINELA_DB_NAME", "sentinela"),
		SSLMode:         getEnvOrDefault("SENTINELA_DB_SSLMODE", "disable"),
		MaxConns:        int32(maxConns),
		MinConns:        int32(minConns),
		MaxConnLifetime: maxLifetime,
		MaxConnIdleTime: maxIdleTime,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
