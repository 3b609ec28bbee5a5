package config

const (
	EnvPrefix = "PAINTQUEUE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv      = "PAINTQUEUE_APP_ENV"
	EnvPort        = "PAINTQUEUE_APP_PORT"
	EnvLogLevel    = "PAINTQUEUE_LOG_LEVEL"
	EnvCORSOrigins = "PAINTQUEUE_CORS_ALLOWED_ORIGINS"

	EnvDBDSN     = "PAINTQUEUE_DB_DSN"
	EnvDBDriver  = "PAINTQUEUE_DB_DRIVER"
	EnvDBHost    = "PAINTQUEUE_DB_HOST"
	EnvDBPort    = "PAINTQUEUE_DB_PORT"
	EnvDBUser    = "PAINTQUEUE_DB_USER"
	EnvDBPass    = "PAINTQUEUE_DB_PASSWORD"
	EnvDBName    = "PAINTQUEUE_DB_NAME"
	EnvDBSSLMode = "PAINTQUEUE_DB_SSLMODE"
	EnvDBSSL     = "PAINTQUEUE_DB_SSL"

	EnvRedisURL       = "PAINTQUEUE_REDIS_URL"
	EnvTrustedProxies = "PAINTQUEUE_RATE_LIMIT_TRUSTED_PROXIES"

	EnvArchiveCutoffDays = "PAINTQUEUE_ORDERS_ARCHIVE_CUTOFF_DAYS"
	EnvAdminActionLog    = "PAINTQUEUE_FEATURE_ADMIN_ACTION_LOG"

	// EnvDatabaseURL is the platform-provided connection string (Heroku, Render, Railway).
	EnvDatabaseURL = "DATABASE_URL"
	// EnvPortOverride is the platform-provided listen port.
	EnvPortOverride = "PORT"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
