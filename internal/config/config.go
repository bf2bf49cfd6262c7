package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port          string
	DatabaseURL   string
	MongoDatabase string
	JWTSecret     string
	JWTIssuer     string
	JWTTTL        time.Duration
	BcryptCost    int
	CORSOrigins   []string
	BasePath      string
	LogLevel      slog.Level
}

type rawEnv struct {
	Port          string `env:"PORT" envDefault:"8080"`
	DatabaseURL   string `env:"DATABASE_URL"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"accounts"`
	JWTSecret     string `env:"JWT_SECRET"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"account-backend"`
	JWTTTLMinutes string `env:"JWT_TTL_MINUTES" envDefault:"60"`
	BcryptCost    string `env:"BCRYPT_COST"`
	CORSOrigins   string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	BasePath      string `env:"API_BASE_PATH"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	var raw rawEnv
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := Config{
		Port:          fallback(raw.Port, "8080"),
		DatabaseURL:   strings.TrimSpace(raw.DatabaseURL),
		MongoDatabase: fallback(raw.MongoDatabase, "accounts"),
		JWTSecret:     strings.TrimSpace(raw.JWTSecret),
		JWTIssuer:     fallback(raw.JWTIssuer, "account-backend"),
		JWTTTL:        time.Duration(positiveInt(raw.JWTTTLMinutes, 60)) * time.Minute,
		BcryptCost:    bcryptCost(raw.BcryptCost),
		CORSOrigins:   parseCSV(fallback(raw.CORSOrigins, "*")),
		BasePath:      normalizeBasePath(raw.BasePath),
		LogLevel:      parseLevel(raw.LogLevel),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func positiveInt(value string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func bcryptCost(value string) int {
	cost := positiveInt(value, bcrypt.DefaultCost)
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// normalizeBasePath returns "" or a path with a leading and no trailing slash.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

func parseLevel(value string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo
	}
	return level
}
