// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestIsLocalhost(t *testing.T) {
	tests := []struct {
		host     string
		expected bool
	}{
		{"", true},
		{"localhost", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"app.localhost", true},
		{"example.com", false},
		{"192.168.1.1", false},
		{"localhost.com", false}, // not a real localhost
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsLocalhost(tt.host))
		})
	}
}

func TestBuildBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *Config
		expected string
	}{
		{
			name: "HTTP default port",
			cfg: &Config{
				Server: ServerConfig{Host: "localhost", Port: 80},
				TLS:    TLSConfig{Mode: "off"},
			},
			expected: "http://localhost",
		},
		{
			name: "HTTP custom port",
			cfg: &Config{
				Server: ServerConfig{Host: "localhost", Port: 8080},
				TLS:    TLSConfig{Mode: "off"},
			},
			expected: "http://localhost:8080",
		},
		{
			name: "manual TLS custom port",
			cfg: &Config{
				Server: ServerConfig{Host: "api.school.example", Port: 8443},
				TLS:    TLSConfig{Mode: "manual"},
			},
			expected: "https://api.school.example:8443",
		},
		{
			name: "ACME mode forces port 443",
			cfg: &Config{
				Server: ServerConfig{Host: "api.school.example", Port: 8080},
				TLS:    TLSConfig{Mode: "acme"},
			},
			expected: "https://api.school.example",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildBaseURL(tt.cfg))
		})
	}
}

func TestParseList(t *testing.T) {
	assert.Equal(t,
		[]string{"http://localhost:3000", "https://app.example"},
		parseList(" http://localhost:3000, ,https://app.example,http://localhost:3000"))
	assert.Empty(t, parseList(""))
}

func validConfig() *Config {
	return &Config{
		TLS:      TLSConfig{Mode: "off"},
		JWT:      JWTConfig{Secret: "s3cret", AccessTTL: time.Minute, RefreshTTL: time.Hour},
		Password: PasswordConfig{Cost: 10, MinLength: 6},
		App:      AppConfig{Env: EnvDevelopment},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"valid", func(*Config) {}, nil},
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }, ErrMissingJWTSecret},
		{"blank secret", func(c *Config) { c.JWT.Secret = "   " }, ErrMissingJWTSecret},
		{"zero access ttl", func(c *Config) { c.JWT.AccessTTL = 0 }, ErrInvalidTTL},
		{"negative refresh ttl", func(c *Config) { c.JWT.RefreshTTL = -time.Second }, ErrInvalidTTL},
		{"cost too low", func(c *Config) { c.Password.Cost = 3 }, ErrInvalidCost},
		{"cost too high", func(c *Config) { c.Password.Cost = 32 }, ErrInvalidCost},
		{"unknown env", func(c *Config) { c.App.Env = "staging" }, ErrInvalidEnv},
		{"unknown tls mode", func(c *Config) { c.TLS.Mode = "selfsigned" }, ErrInvalidTLSMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestIsProduction(t *testing.T) {
	cfg := validConfig()
	assert.False(t, cfg.IsProduction())

	cfg.App.Env = EnvProduction
	assert.True(t, cfg.IsProduction())
}

func TestFlags(t *testing.T) {
	flags := Flags()

	flagNames := make(map[string]bool)
	for _, f := range flags {
		for _, name := range f.Names() {
			flagNames[name] = true
		}
	}

	for _, name := range []string{
		"host", "port", "database-dsn", "tls-mode", "cors-origins", "rate-limit",
		"jwt-secret", "jwt-refresh-secret", "jwt-expiration", "jwt-refresh-expiration",
		"password-cost", "password-min-length", "app-env",
	} {
		assert.True(t, flagNames[name], "should have %s flag", name)
	}
}

func runWithConfig(t *testing.T, args []string, check func(*Config, error)) {
	t.Helper()
	app := &cli.Command{
		Name:  "test",
		Flags: Flags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			check(NewFromCLI(cmd))
			return nil
		},
	}
	require.NoError(t, app.Run(context.Background(), append([]string{"test"}, args...)))
}

func TestNewFromCLI(t *testing.T) {
	runWithConfig(t, []string{"--jwt-secret", "s3cret"}, func(cfg *Config, err error) {
		require.NoError(t, err)

		assert.Equal(t, "localhost", cfg.Server.Host)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
		assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
		assert.InDelta(t, 10.0, cfg.Server.RateLimit, 0.001)
		assert.Equal(t, 20, cfg.Server.RateBurst)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "text", cfg.Log.Format)
		assert.Equal(t, "off", cfg.TLS.Mode)
		assert.Equal(t, "s3cret", cfg.JWT.Secret)
		assert.Empty(t, cfg.JWT.RefreshSecret)
		assert.Equal(t, 900*time.Second, cfg.JWT.AccessTTL)
		assert.Equal(t, 604800*time.Second, cfg.JWT.RefreshTTL)
		assert.Equal(t, 10, cfg.Password.Cost)
		assert.Equal(t, 6, cfg.Password.MinLength)
		assert.Equal(t, EnvDevelopment, cfg.App.Env)
	})
}

func TestNewFromCLI_WithCustomValues(t *testing.T) {
	args := []string{
		"--host", "0.0.0.0",
		"--port", "9000",
		"--base-url", "https://api.school.example",
		"--database-dsn", "postgres://app@db/school",
		"--jwt-secret", "access",
		"--jwt-refresh-secret", "refresh",
		"--jwt-expiration", "60",
		"--cors-origins", "https://a.example,https://b.example",
		"--app-env", "Production",
	}

	runWithConfig(t, args, func(cfg *Config, err error) {
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "https://api.school.example", cfg.Server.BaseURL)
		assert.Equal(t, "postgres://app@db/school", cfg.Database.DSN)
		assert.Equal(t, "refresh", cfg.JWT.RefreshSecret)
		assert.Equal(t, time.Minute, cfg.JWT.AccessTTL)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
		assert.True(t, cfg.IsProduction())
	})
}

func TestNewFromCLI_Env(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("JWT_EXPIRATION", "120")
	t.Setenv("DATABASE_URL", "./data/env.db")
	t.Setenv("APP_ENV", "production")

	runWithConfig(t, nil, func(cfg *Config, err error) {
		require.NoError(t, err)

		assert.Equal(t, "from-env", cfg.JWT.Secret)
		assert.Equal(t, 2*time.Minute, cfg.JWT.AccessTTL)
		assert.Equal(t, "./data/env.db", cfg.Database.DSN)
		assert.True(t, cfg.IsProduction())
	})
}

func TestNewFromCLI_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	runWithConfig(t, nil, func(cfg *Config, err error) {
		assert.Nil(t, cfg)
		assert.ErrorIs(t, err, ErrMissingJWTSecret)
	})
}
