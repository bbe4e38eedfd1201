package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------------

// baseValidConfig returns a fully-valid configuration object that callers
// can tweak inside table tests.
func baseValidConfig() Config {
	return Config{
		AppPort:            8080,
		BcryptCost:         12,
		SignInRatePerMin:   5,
		LogLevel:           "info",
		LogFormat:          "json",
		StoreDriver:        StoreMongo,
		MongoURI:           "mongodb://localhost:27017",
		MongoDBName:        "test",
		JWTSecret:          "this-is-a-super-secret-jwt-key-with-32-plus-chars",
		JWTAlgorithm:       "HS256",
		AccessTokenMinutes: 15,
		WSMaxSessionSec:    900,
		WSOutboxBuffer:     256,
		CacheStaleSec:      30,
		RequestTimeoutSec:  15,
	}
}

// clearConfigEnvVars removes every environment variable that the Config loader
// consumes so each test starts with a clean slate.
func clearConfigEnvVars(t *testing.T) {
	t.Helper()

	for _, k := range []string{
		"APP_PORT",
		"BCRYPT_COST",
		"SIGNIN_RATE_PER_MIN",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"STORE_DRIVER",
		"MONGO_URI",
		"MONGO_DB_NAME",
		"JWT_SECRET",
		"JWT_ALGORITHM",
		"ACCESS_TOKEN_MINUTES",
		"WS_MAX_SESSION_SEC",
		"WS_OUTBOX_BUFFER",
		"ROUTE_METRICS_ENABLED",
		"REQUEST_LOGGING_ENABLED",
		"CACHE_STALE_SEC",
		"REQUEST_TIMEOUT_SEC",
		"PYROSCOPE_SERVER_ADDRESS",
	} {
		if err := os.Unsetenv(k); err != nil {
			t.Logf("warning: failed to unset %s: %v", k, err)
		}
	}
}

func TestConfigLoadDefaults(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()
	t.Cleanup(ResetCache)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.AppPort)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 5, cfg.SignInRatePerMin)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, "mongodb://mongo:27017", cfg.MongoURI)
	assert.Equal(t, "notesync", cfg.MongoDBName)
	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, 60, cfg.AccessTokenMinutes)
	assert.Equal(t, 900, cfg.WSMaxSessionSec)
	assert.Equal(t, 256, cfg.WSOutboxBuffer)
	assert.True(t, cfg.RouteMetricsEnabled)
	assert.True(t, cfg.RequestLoggingEnabled)
	assert.Equal(t, 30, cfg.CacheStaleSec)
	assert.Equal(t, 15, cfg.RequestTimeoutSec)
	assert.Empty(t, cfg.PyroscopeServerAddress)
}

func TestConfigLoadWithOverride(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()
	t.Cleanup(ResetCache)

	t.Setenv("APP_PORT", "9999")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CACHE_STALE_SEC", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.AppPort)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 5, cfg.CacheStaleSec)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestConfigCaching(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()
	t.Cleanup(ResetCache)

	cfg1, err := Load()
	require.NoError(t, err)

	// the override must not be seen: second call hits the cache
	t.Setenv("APP_PORT", "9191")
	cfg2, err := Load()
	require.NoError(t, err)

	assert.Equal(t, cfg1, cfg2)
}

func TestConfigLoadRejectsInvalidEnv(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()
	t.Cleanup(ResetCache)

	t.Setenv("STORE_DRIVER", "postgres")

	_, err := Load()
	assert.ErrorIs(t, err, ErrStoreDriverUnsupported)
}

// -----------------------------------------------------------------------------
// Validate() unit tests (table-driven)
// -----------------------------------------------------------------------------

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:   "valid config",
			modify: func(*Config) {},
		},
		{
			name:   "memory driver needs no mongo settings",
			modify: func(c *Config) { c.StoreDriver = StoreMemory; c.MongoURI = ""; c.MongoDBName = "" },
		},
		{
			name:    "invalid port - zero",
			modify:  func(c *Config) { c.AppPort = 0 },
			wantErr: ErrAppPortRange,
		},
		{
			name:    "invalid port - too high",
			modify:  func(c *Config) { c.AppPort = 70000 },
			wantErr: ErrAppPortRange,
		},
		{
			name:    "empty log level",
			modify:  func(c *Config) { c.LogLevel = "" },
			wantErr: ErrLogLevelEmpty,
		},
		{
			name:    "empty mongo uri",
			modify:  func(c *Config) { c.MongoURI = "" },
			wantErr: ErrMongoURIEmpty,
		},
		{
			name:    "unknown store driver",
			modify:  func(c *Config) { c.StoreDriver = "sqlite" },
			wantErr: ErrStoreDriverUnsupported,
		},
		{
			name:    "empty JWT secret",
			modify:  func(c *Config) { c.JWTSecret = "" },
			wantErr: ErrJWTSecretRequired,
		},
		{
			name:    "JWT secret too short for HS256",
			modify:  func(c *Config) { c.JWTSecret = "short" },
			wantErr: ErrJWTSecretTooShort,
		},
		{
			name:    "invalid JWT algorithm",
			modify:  func(c *Config) { c.JWTAlgorithm = "RS256" },
			wantErr: ErrJWTAlgorithmUnsupported,
		},
		{
			name:    "bcrypt cost too high",
			modify:  func(c *Config) { c.BcryptCost = 17 },
			wantErr: ErrBcryptCostRange,
		},
		{
			name:    "stale window must be positive",
			modify:  func(c *Config) { c.CacheStaleSec = 0 },
			wantErr: ErrCacheStaleSec,
		},
		{
			name:    "request timeout must be positive",
			modify:  func(c *Config) { c.RequestTimeoutSec = -1 },
			wantErr: ErrRequestTimeoutSec,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseValidConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigDurations(t *testing.T) {
	cfg := baseValidConfig()
	cfg.AccessTokenMinutes = 15
	cfg.CacheStaleSec = 30
	cfg.RequestTimeoutSec = 2

	assert.Equal(t, 15*time.Minute, cfg.TokenTTL())
	assert.Equal(t, 30*time.Second, cfg.CacheStale())
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout())
}
