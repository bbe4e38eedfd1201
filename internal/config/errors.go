package config

import "errors"

var (
	ErrAppPortRange            = errors.New("APP_PORT must be between 1 and 65535")
	ErrBcryptCostRange         = errors.New("BCRYPT_COST must be between 4 and 16")
	ErrSignInRatePerMin        = errors.New("SIGNIN_RATE_PER_MIN must be greater than or equal to 1")
	ErrLogLevelEmpty           = errors.New("LOG_LEVEL cannot be empty")
	ErrLogFormatEmpty          = errors.New("LOG_FORMAT cannot be empty")
	ErrStoreDriverUnsupported  = errors.New("STORE_DRIVER must be either mongo or memory")
	ErrMongoURIEmpty           = errors.New("MONGO_URI cannot be empty")
	ErrMongoDBNameEmpty        = errors.New("MONGO_DB_NAME cannot be empty")
	ErrJWTSecretRequired       = errors.New("JWT_SECRET cannot be empty")
	ErrJWTAlgorithmUnsupported = errors.New("JWT_ALGORITHM must be HS256")
	ErrJWTSecretTooShort       = errors.New("JWT_SECRET must be at least 32 characters for HS256")
	ErrAccessTokenMinutes      = errors.New("ACCESS_TOKEN_MINUTES must be greater than 0")
	ErrWSMaxSessionSec         = errors.New("WS_MAX_SESSION_SEC must be greater than 0")
	ErrWSOutboxBuffer          = errors.New("WS_OUTBOX_BUFFER must be greater than 0")
	ErrCacheStaleSec           = errors.New("CACHE_STALE_SEC must be greater than 0")
	ErrRequestTimeoutSec       = errors.New("REQUEST_TIMEOUT_SEC must be greater than 0")
)
