// Package config reads settings from the environment and an optional .env file.
package config

import (
	"errors"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	AppPort                int    `mapstructure:"APP_PORT"`
	BcryptCost             int    `mapstructure:"BCRYPT_COST"`
	SignInRatePerMin       int    `mapstructure:"SIGNIN_RATE_PER_MIN"`
	LogLevel               string `mapstructure:"LOG_LEVEL"`
	LogFormat              string `mapstructure:"LOG_FORMAT"`
	StoreDriver            string `mapstructure:"STORE_DRIVER"`
	MongoURI               string `mapstructure:"MONGO_URI"`
	MongoDBName            string `mapstructure:"MONGO_DB_NAME"`
	JWTSecret              string `mapstructure:"JWT_SECRET"`
	JWTAlgorithm           string `mapstructure:"JWT_ALGORITHM"`
	AccessTokenMinutes     int    `mapstructure:"ACCESS_TOKEN_MINUTES"`
	WSMaxSessionSec        int    `mapstructure:"WS_MAX_SESSION_SEC"`
	WSOutboxBuffer         int    `mapstructure:"WS_OUTBOX_BUFFER"`
	RouteMetricsEnabled    bool   `mapstructure:"ROUTE_METRICS_ENABLED"`
	RequestLoggingEnabled  bool   `mapstructure:"REQUEST_LOGGING_ENABLED"`
	CacheStaleSec          int    `mapstructure:"CACHE_STALE_SEC"`
	RequestTimeoutSec      int    `mapstructure:"REQUEST_TIMEOUT_SEC"`
	PyroscopeServerAddress string `mapstructure:"PYROSCOPE_SERVER_ADDRESS"`
}

var defaults = map[string]any{
	"APP_PORT":                 8080,
	"BCRYPT_COST":              12,
	"SIGNIN_RATE_PER_MIN":      5,
	"LOG_LEVEL":                "info",
	"LOG_FORMAT":               "json",
	"STORE_DRIVER":             StoreMongo,
	"MONGO_URI":                "mongodb://mongo:27017",
	"MONGO_DB_NAME":            "notesync",
	"JWT_SECRET":               "this-is-a-default-jwt-secret-key-with-32-plus-characters",
	"JWT_ALGORITHM":            "HS256",
	"ACCESS_TOKEN_MINUTES":     60,
	"WS_MAX_SESSION_SEC":       900,
	"WS_OUTBOX_BUFFER":         256,
	"ROUTE_METRICS_ENABLED":    true,
	"REQUEST_LOGGING_ENABLED":  true,
	"CACHE_STALE_SEC":          30,
	"REQUEST_TIMEOUT_SEC":      15,
	"PYROSCOPE_SERVER_ADDRESS": "",
}

var (
	mu     sync.Mutex
	cached *Config
)

// Load returns the process configuration. The first successful call is
// cached until ResetCache.
func Load() (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	if cached != nil {
		return *cached, nil
	}

	cfg, err := read()
	if err != nil {
		return Config{}, err
	}
	cached = &cfg
	return cfg, nil
}

// ResetCache forgets the cached configuration so the next Load re-reads it.
func ResetCache() {
	mu.Lock()
	cached = nil
	mu.Unlock()
}

func read() (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// TokenTTL is the lifetime of issued access tokens.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.AccessTokenMinutes) * time.Minute
}

// CacheStale is how long a cached query result counts as fresh.
func (c Config) CacheStale() time.Duration {
	return time.Duration(c.CacheStaleSec) * time.Second
}

// RequestTimeout bounds a single store request made through the sync client.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// Validate reports the first setting that is out of range.
func (c Config) Validate() error {
	checks := []struct {
		bad bool
		err error
	}{
		{c.AppPort <= 0 || c.AppPort > 65535, ErrAppPortRange},
		{c.BcryptCost < 4 || c.BcryptCost > 16, ErrBcryptCostRange},
		{c.SignInRatePerMin < 1, ErrSignInRatePerMin},
		{c.LogLevel == "", ErrLogLevelEmpty},
		{c.LogFormat == "", ErrLogFormatEmpty},
		{c.StoreDriver != StoreMongo && c.StoreDriver != StoreMemory, ErrStoreDriverUnsupported},
		{c.StoreDriver == StoreMongo && c.MongoURI == "", ErrMongoURIEmpty},
		{c.StoreDriver == StoreMongo && c.MongoDBName == "", ErrMongoDBNameEmpty},
		{c.JWTSecret == "", ErrJWTSecretRequired},
		{c.JWTAlgorithm != "HS256", ErrJWTAlgorithmUnsupported},
		{len(c.JWTSecret) < 32, ErrJWTSecretTooShort},
		{c.AccessTokenMinutes <= 0, ErrAccessTokenMinutes},
		{c.WSMaxSessionSec <= 0, ErrWSMaxSessionSec},
		{c.WSOutboxBuffer <= 0, ErrWSOutboxBuffer},
		{c.CacheStaleSec <= 0, ErrCacheStaleSec},
		{c.RequestTimeoutSec <= 0, ErrRequestTimeoutSec},
	}
	for _, chk := range checks {
		if chk.bad {
			return chk.err
		}
	}
	return nil
}
