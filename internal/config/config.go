// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
	"golang.org/x/crypto/bcrypt"
)

var configFile = altsrc.StringSourcer("config.toml")

var (
	ErrMissingJWTSecret = errors.New("JWT secret is required (set JWT_SECRET)")
	ErrInvalidTTL       = errors.New("token lifetimes must be positive")
	ErrInvalidCost      = errors.New("password cost out of range")
	ErrInvalidEnv       = errors.New("app env must be development or production")
	ErrInvalidTLSMode   = errors.New("tls mode must be off, manual or acme")
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	TLS      TLSConfig
	JWT      JWTConfig
	Password PasswordConfig
	App      AppConfig
}

type TLSConfig struct {
	Mode     string // off, manual, acme
	CertDir  string // ACME certificate cache
	Email    string // ACME email for Let's Encrypt
	CertFile string // Path to certificate file (manual mode)
	KeyFile  string // Path to private key file (manual mode)
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	BaseURL     string
	MaxBodySize int // in MB
	CORSOrigins []string
	RateLimit   float64 // requests per second and client, 0 disables
	RateBurst   int
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string // file path for SQLite or postgres:// URL
}

type JWTConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Secret        string
	RefreshSecret string // falls back to Secret when empty
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type PasswordConfig struct {
	Cost      int // bcrypt cost
	MinLength int
}

type AppConfig struct {
	Env string // development, production
}

// IsProduction reports whether error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return c.App.Env == EnvProduction
}

// NewFromCLI builds the configuration from the parsed command and validates it.
func NewFromCLI(cmd *cli.Command) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			BaseURL:     cmd.String("base-url"),
			MaxBodySize: int(cmd.Int("max-body-size")),
			CORSOrigins: parseList(cmd.String("cors-origins")),
			RateLimit:   cmd.Float("rate-limit"),
			RateBurst:   int(cmd.Int("rate-burst")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		TLS: TLSConfig{
			Mode:     strings.ToLower(cmd.String("tls-mode")),
			CertDir:  cmd.String("tls-cert-dir"),
			Email:    cmd.String("tls-email"),
			CertFile: cmd.String("tls-cert-file"),
			KeyFile:  cmd.String("tls-key-file"),
		},
		JWT: JWTConfig{
			Secret:        cmd.String("jwt-secret"),
			RefreshSecret: cmd.String("jwt-refresh-secret"),
			AccessTTL:     time.Duration(cmd.Int("jwt-expiration")) * time.Second,
			RefreshTTL:    time.Duration(cmd.Int("jwt-refresh-expiration")) * time.Second,
		},
		Password: PasswordConfig{
			Cost:      int(cmd.Int("password-cost")),
			MinLength: int(cmd.Int("password-min-length")),
		},
		App: AppConfig{
			Env: strings.ToLower(cmd.String("app-env")),
		},
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = buildBaseURL(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return ErrMissingJWTSecret
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return ErrInvalidTTL
	}
	if c.Password.Cost < bcrypt.MinCost || c.Password.Cost > bcrypt.MaxCost {
		return fmt.Errorf("%w: %d", ErrInvalidCost, c.Password.Cost)
	}
	if c.App.Env != EnvDevelopment && c.App.Env != EnvProduction {
		return fmt.Errorf("%w: %q", ErrInvalidEnv, c.App.Env)
	}
	switch c.TLS.Mode {
	case "off", "manual", "acme":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTLSMode, c.TLS.Mode)
	}
	return nil
}

// parseList splits a comma separated value into trimmed, non-empty items.
func parseList(s string) []string {
	items := lo.Map(strings.Split(s, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	})
	return lo.Uniq(lo.Compact(items))
}

func buildBaseURL(cfg *Config) string {
	host := cfg.Server.Host
	port := cfg.Server.Port
	mode := cfg.TLS.Mode

	scheme := "http"
	if shouldUseTLS(mode) {
		scheme = "https"
	}

	// ACME mode always uses port 443
	if mode == "acme" {
		return fmt.Sprintf("https://%s", host)
	}

	// Hide default ports in URL
	if (scheme == "http" && port == 80) || (scheme == "https" && port == 443) {
		return fmt.Sprintf("%s://%s", scheme, host)
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, port)
}

func shouldUseTLS(mode string) bool {
	return mode == "acme" || mode == "manual"
}

// IsLocalhost checks if the host is a localhost address.
func IsLocalhost(host string) bool {
	switch host {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	// Check for *.localhost subdomains (e.g., app.localhost)
	return strings.HasSuffix(host, ".localhost")
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SERVER_HOST"), cli.EnvVar("HOST"), toml.TOML("server.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SERVER_PORT"), cli.EnvVar("PORT"), toml.TOML("server.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Base URL for the application",
			Sources: cli.NewValueSourceChain(cli.EnvVar("BASE_URL"), toml.TOML("server.base_url", configFile)),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   1,
			Usage:   "Maximum request body size in MB",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAX_BODY_SIZE"), toml.TOML("server.max_body_size", configFile)),
		},
		&cli.StringFlag{
			Name:    "cors-origins",
			Value:   "http://localhost:3000",
			Usage:   "Comma separated list of allowed CORS origins",
			Sources: cli.NewValueSourceChain(cli.EnvVar("CORS_ORIGINS"), toml.TOML("server.cors_origins", configFile)),
		},
		&cli.FloatFlag{
			Name:    "rate-limit",
			Value:   10,
			Usage:   "Requests per second per client IP (0 disables rate limiting)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("RATE_LIMIT"), toml.TOML("server.rate_limit", configFile)),
		},
		&cli.IntFlag{
			Name:    "rate-burst",
			Value:   20,
			Usage:   "Burst size of the rate limiter",
			Sources: cli.NewValueSourceChain(cli.EnvVar("RATE_BURST"), toml.TOML("server.rate_burst", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/app.db",
			Usage:   "Database DSN (SQLite path or postgres:// URL)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DATABASE_URL"), cli.EnvVar("DATABASE_DSN"), toml.TOML("database.dsn", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-mode",
			Value:   "off",
			Usage:   "TLS mode (off, manual, acme)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_MODE"), toml.TOML("tls.mode", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-cert-dir",
			Value:   "./data/certs",
			Usage:   "Directory for ACME certificates",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_CERT_DIR"), toml.TOML("tls.cert_dir", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-email",
			Usage:   "Email for ACME/Let's Encrypt registration",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_EMAIL"), toml.TOML("tls.email", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-cert-file",
			Usage:   "Path to TLS certificate file (manual mode)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_CERT_FILE"), toml.TOML("tls.cert_file", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-key-file",
			Usage:   "Path to TLS private key file (manual mode)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_KEY_FILE"), toml.TOML("tls.key_file", configFile)),
		},
		// JWT flags
		&cli.StringFlag{
			Name:    "jwt-secret",
			Usage:   "Secret for signing access tokens (required)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("JWT_SECRET"), toml.TOML("jwt.secret", configFile)),
		},
		&cli.StringFlag{
			Name:    "jwt-refresh-secret",
			Usage:   "Secret for signing refresh tokens (defaults to the access secret)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("JWT_REFRESH_SECRET"), toml.TOML("jwt.refresh_secret", configFile)),
		},
		&cli.IntFlag{
			Name:    "jwt-expiration",
			Value:   900,
			Usage:   "Access token lifetime in seconds",
			Sources: cli.NewValueSourceChain(cli.EnvVar("JWT_EXPIRATION"), toml.TOML("jwt.expiration", configFile)),
		},
		&cli.IntFlag{
			Name:    "jwt-refresh-expiration",
			Value:   604800, // 7 days in seconds
			Usage:   "Refresh token lifetime in seconds",
			Sources: cli.NewValueSourceChain(cli.EnvVar("JWT_REFRESH_EXPIRATION"), toml.TOML("jwt.refresh_expiration", configFile)),
		},
		// Password flags
		&cli.IntFlag{
			Name:    "password-cost",
			Value:   bcrypt.DefaultCost,
			Usage:   "bcrypt cost for password hashes",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PASSWORD_COST"), toml.TOML("password.cost", configFile)),
		},
		&cli.IntFlag{
			Name:    "password-min-length",
			Value:   6,
			Usage:   "Minimum password length in characters",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PASSWORD_MIN_LENGTH"), toml.TOML("password.min_length", configFile)),
		},
		&cli.StringFlag{
			Name:    "app-env",
			Value:   EnvDevelopment,
			Usage:   "Application environment (development, production)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("APP_ENV"), toml.TOML("app.env", configFile)),
		},
	}
}
