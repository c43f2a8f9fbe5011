package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected bool
	}{
		{
			name:     "development environment",
			config:   &Config{Server: ServerConfig{AppEnv: "development"}},
			expected: true,
		},
		{
			name:     "debug gin mode",
			config:   &Config{Server: ServerConfig{GinMode: "debug"}},
			expected: true,
		},
		{
			name:     "production environment",
			config:   &Config{Server: ServerConfig{AppEnv: "production"}},
			expected: false,
		},
		{
			name:     "release mode",
			config:   &Config{Server: ServerConfig{GinMode: "release", AppEnv: "production"}},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.IsDevelopment())
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	assert.True(t, (&Config{Server: ServerConfig{AppEnv: "production"}}).IsProduction())
	assert.False(t, (&Config{Server: ServerConfig{AppEnv: "staging"}}).IsProduction())
}

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: "8081", AllowedOrigins: []string{"https://getmentor.dev"}},
		Database: DatabaseConfig{URL: "postgres://localhost/mentorship"},
		Session:  SessionConfig{JWTSecret: "secret"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{
			name:   "valid online config",
			mutate: func(c *Config) {},
		},
		{
			name: "valid offline config without database url",
			mutate: func(c *Config) {
				c.Database.URL = ""
				c.Database.WorkOffline = true
			},
		},
		{
			name:     "missing database url",
			mutate:   func(c *Config) { c.Database.URL = "" },
			errorMsg: "DATABASE_URL is required",
		},
		{
			name:     "missing jwt secret",
			mutate:   func(c *Config) { c.Session.JWTSecret = "" },
			errorMsg: "JWT_SECRET is required",
		},
		{
			name:     "missing port",
			mutate:   func(c *Config) { c.Server.Port = "" },
			errorMsg: "PORT is required",
		},
		{
			name:     "missing cors origins",
			mutate:   func(c *Config) { c.Server.AllowedOrigins = nil },
			errorMsg: "ALLOWED_CORS_ORIGINS is required",
		},
		{
			name:     "negative lookup retries",
			mutate:   func(c *Config) { c.Engagement.LookupRetries = -1 },
			errorMsg: "ENGAGEMENT_LOOKUP_RETRIES",
		},
		{
			name:     "bucket without credentials",
			mutate:   func(c *Config) { c.Storage.BucketName = "resumes" },
			errorMsg: "STORAGE_ACCESS_KEY_ID",
		},
		{
			name:     "profiling without endpoint",
			mutate:   func(c *Config) { c.Profiling.Enabled = true },
			errorMsg: "O11Y_PROFILING_ENDPOINT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DB_WORK_OFFLINE", "true")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ALLOWED_CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("ENGAGEMENT_LOOKUP_RETRIES", "5")
	t.Setenv("ENGAGEMENT_LOOKUP_INITIAL_DELAY_MS", "20")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Database.WorkOffline)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 5, cfg.Engagement.LookupRetries)
	assert.Equal(t, 20*time.Millisecond, cfg.Engagement.LookupInitialDelay)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, 300, cfg.Cache.ProfileTTLSeconds)
	assert.False(t, cfg.StorageEnabled())
}

func TestLoad_MissingSecretFails(t *testing.T) {
	t.Setenv("DB_WORK_OFFLINE", "true")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadForMigrations(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/mentorship")

	cfg, err := LoadForMigrations()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/mentorship", cfg.Database.URL)

	t.Setenv("DATABASE_URL", "")
	_, err = LoadForMigrations()
	assert.Error(t, err)
}
