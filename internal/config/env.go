package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvSQLitePath  = "SQLITE_DB_PATH"
	EnvDatabaseURL = "DATABASE_URL"
	// POSTGRES_URL is what hosted Postgres providers usually export.
	EnvPostgresURL = "POSTGRES_URL"
)

// DatabaseConfig holds the two connection identifiers of a run.
type DatabaseConfig struct {
	SQLitePath  string `env:"SQLITE_DB_PATH" validate:"required"`
	DatabaseURL string `env:"DATABASE_URL" validate:"required,postgres_dsn"`
}

// LoadEnv loads environment variables from the first .env file found. It
// returns the loaded path, or "" when no file exists; variables already set
// in the environment win over the file.
func LoadEnv() (string, error) {
	envPaths := []string{
		".env",
		".env.local",
		"../.env",
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return "", fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			return envPath, nil
		}
	}

	return "", nil
}

type targetConfig struct {
	DatabaseURL string `env:"DATABASE_URL" validate:"required,postgres_dsn"`
}

// GetDatabaseConfig reads connection settings from the environment, applies
// non-empty overrides (command-line flags), and validates the result.
func GetDatabaseConfig(overrides DatabaseConfig) (*DatabaseConfig, error) {
	cfg := readDatabaseConfig(overrides)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetTargetConfig is GetDatabaseConfig for commands that only talk to
// PostgreSQL; SQLITE_DB_PATH may be unset.
func GetTargetConfig(overrides DatabaseConfig) (*DatabaseConfig, error) {
	cfg := readDatabaseConfig(overrides)
	if err := Validate(&targetConfig{DatabaseURL: cfg.DatabaseURL}); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readDatabaseConfig(overrides DatabaseConfig) *DatabaseConfig {
	cfg := &DatabaseConfig{
		SQLitePath:  strings.TrimSpace(os.Getenv(EnvSQLitePath)),
		DatabaseURL: strings.TrimSpace(os.Getenv(EnvDatabaseURL)),
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = strings.TrimSpace(os.Getenv(EnvPostgresURL))
	}

	if overrides.SQLitePath != "" {
		cfg.SQLitePath = overrides.SQLitePath
	}
	if overrides.DatabaseURL != "" {
		cfg.DatabaseURL = overrides.DatabaseURL
	}
	return cfg
}

var keywordPassword = regexp.MustCompile(`(?i)(password\s*=\s*)('[^']*'|\S+)`)

// RedactDSN hides the password of a URL or keyword/value connection string
// so it can be logged.
func RedactDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.User != nil {
		return u.Redacted()
	}
	return keywordPassword.ReplaceAllString(dsn, "${1}xxxxx")
}
