// Package config loads server settings from the environment, optionally
// seeded from a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port            string        `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	DatabasePath    string        `envconfig:"DATABASE_PATH" default:"bookshelf.db" validate:"required"`
	ProfileSecret   string        `envconfig:"PROFILE_SECRET" validate:"required,min=32"`
	CookieSecure    bool          `envconfig:"COOKIE_SECURE" default:"true"`
	CatalogSize     int           `envconfig:"CATALOG_SIZE" default:"100" validate:"min=1,max=10000"`
	CatalogSeed     uint64        `envconfig:"CATALOG_SEED" default:"0"`
	LoanDays        int           `envconfig:"LOAN_DAYS" default:"14" validate:"min=1,max=365"`
	PasswordHashing string        `envconfig:"PASSWORD_HASHING" default:"plain" validate:"oneof=plain bcrypt"`
	BcryptCost      int           `envconfig:"BCRYPT_COST" default:"12" validate:"min=4,max=14"`
	ProfileIdleTTL  time.Duration `envconfig:"PROFILE_IDLE_TTL" default:"30m"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
}

// Load reads .env (if present) and then the process environment. Variables
// already set in the environment win over .env entries.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	cfg.PasswordHashing = strings.ToLower(cfg.PasswordHashing)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}
