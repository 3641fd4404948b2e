package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
// Defaults are overlaid by an optional TOML file, then by environment
// variables.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Bank
	BankName        string
	BankFingerprint string

	// External card issuer; empty means local generation only
	CardIssuerURL string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Idempotency keys for money movements
	IdempotencyTTL time.Duration

	// Observability; empty endpoint disables export
	OTLPEndpoint string

	// Sessions
	JWTSecret     string
	JWTSessionTTL time.Duration
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:            8080,
		LogLevel:        "info",
		BankName:        "Retail Bank",
		BankFingerprint: "",
		HTTPTimeout:     5 * time.Second,
		MaxRetries:      3,
		InitialBackoff:  100 * time.Millisecond,
		MaxConcurrency:  20,
		IdempotencyTTL:  10 * time.Minute,
		OTLPEndpoint:    "",
		JWTSecret:       "ledger-default-dev-secret-change-me",
		JWTSessionTTL:   15 * time.Minute,
	}
}

// fileConfig mirrors Config in the TOML file. Durations are strings
// ("250ms", "10m") parsed with time.ParseDuration.
type fileConfig struct {
	Port            *int    `toml:"port"`
	LogLevel        *string `toml:"log_level"`
	BankName        *string `toml:"bank_name"`
	BankFingerprint *string `toml:"bank_fingerprint"`
	CardIssuerURL   *string `toml:"card_issuer_url"`
	HTTPTimeout     *string `toml:"http_timeout"`
	MaxRetries      *int    `toml:"max_retries"`
	InitialBackoff  *string `toml:"initial_backoff"`
	MaxConcurrency  *int    `toml:"max_concurrency"`
	IdempotencyTTL  *string `toml:"idempotency_ttl"`
	OTLPEndpoint    *string `toml:"otel_exporter_otlp_endpoint"`
	JWTSecret       *string `toml:"jwt_secret"`
	JWTSessionTTL   *string `toml:"jwt_session_ttl"`
}

// Load builds the configuration. path names an optional TOML file; an empty
// path skips it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.mergeEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	setInt(&c.Port, fc.Port)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.BankName, fc.BankName)
	setString(&c.BankFingerprint, fc.BankFingerprint)
	setString(&c.CardIssuerURL, fc.CardIssuerURL)
	setInt(&c.MaxRetries, fc.MaxRetries)
	setInt(&c.MaxConcurrency, fc.MaxConcurrency)
	setString(&c.OTLPEndpoint, fc.OTLPEndpoint)
	setString(&c.JWTSecret, fc.JWTSecret)

	durations := []struct {
		key string
		dst *time.Duration
		src *string
	}{
		{"http_timeout", &c.HTTPTimeout, fc.HTTPTimeout},
		{"initial_backoff", &c.InitialBackoff, fc.InitialBackoff},
		{"idempotency_ttl", &c.IdempotencyTTL, fc.IdempotencyTTL},
		{"jwt_session_ttl", &c.JWTSessionTTL, fc.JWTSessionTTL},
	}
	for _, d := range durations {
		if d.src == nil {
			continue
		}
		v, err := time.ParseDuration(*d.src)
		if err != nil {
			return fmt.Errorf("config file %s: %s: %w", path, d.key, err)
		}
		*d.dst = v
	}
	return nil
}

func (c *Config) mergeEnv() {
	c.Port = getEnvInt("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.BankName = getEnv("BANK_NAME", c.BankName)
	c.BankFingerprint = getEnv("BANK_FINGERPRINT", c.BankFingerprint)
	c.CardIssuerURL = getEnv("CARD_ISSUER_URL", c.CardIssuerURL)

	c.HTTPTimeout = getEnvDuration("HTTP_TIMEOUT", c.HTTPTimeout)

	c.MaxRetries = getEnvInt("MAX_RETRIES", c.MaxRetries)
	c.InitialBackoff = getEnvDuration("INITIAL_BACKOFF", c.InitialBackoff)
	c.MaxConcurrency = getEnvInt("MAX_CONCURRENCY", c.MaxConcurrency)

	c.IdempotencyTTL = getEnvDuration("IDEMPOTENCY_TTL", c.IdempotencyTTL)
	c.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLPEndpoint)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTSessionTTL = getEnvDuration("JWT_SESSION_TTL", c.JWTSessionTTL)
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.BankFingerprint == "":
		return fmt.Errorf("config: bank fingerprint is required (BANK_FINGERPRINT)")
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("config: invalid port %d", c.Port)
	case c.IdempotencyTTL <= 0:
		return fmt.Errorf("config: idempotency ttl must be positive")
	case c.JWTSessionTTL <= 0:
		return fmt.Errorf("config: jwt session ttl must be positive")
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
