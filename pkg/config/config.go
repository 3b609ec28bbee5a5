package config

import (
	"fmt"
	"net/netip"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	RateLimit    RateLimitConfig
	Orders       OrdersConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if cfg.Orders.ArchiveCutoffDays <= 0 {
		return nil, fmt.Errorf("%s must be positive", EnvArchiveCutoffDays)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env                string   `envconfig:"PAINTQUEUE_APP_ENV" default:"dev"`
	Port               string   `envconfig:"PAINTQUEUE_APP_PORT" default:"5000"`
	LogLevel           string   `envconfig:"PAINTQUEUE_LOG_LEVEL" default:"info"`
	LogWarnStack       bool     `envconfig:"PAINTQUEUE_LOG_WARN_STACK" default:"false"`
	LogFormat          string   `envconfig:"PAINTQUEUE_LOG_FORMAT" default:"json"`
	CORSAllowedOrigins []string `envconfig:"PAINTQUEUE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

// ListenPort prefers the platform PORT variable over the configured port.
func (a AppConfig) ListenPort() string {
	if p := strings.TrimSpace(os.Getenv(EnvPortOverride)); p != "" {
		return p
	}
	return a.Port
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DBConfig struct {
	DSN    string `envconfig:"PAINTQUEUE_DB_DSN"`
	Driver string `envconfig:"PAINTQUEUE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"PAINTQUEUE_DB_HOST"`
	Port     int    `envconfig:"PAINTQUEUE_DB_PORT" default:"5432"`
	User     string `envconfig:"PAINTQUEUE_DB_USER"`
	Password string `envconfig:"PAINTQUEUE_DB_PASSWORD"`
	Name     string `envconfig:"PAINTQUEUE_DB_NAME"`
	SSLMode  string `envconfig:"PAINTQUEUE_DB_SSLMODE" default:"disable"`
	SSL      bool   `envconfig:"PAINTQUEUE_DB_SSL" default:"false"`

	MaxOpenConns    int           `envconfig:"PAINTQUEUE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PAINTQUEUE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PAINTQUEUE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PAINTQUEUE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"PAINTQUEUE_DB_SLOW_QUERY_THRESHOLD" default:"200ms"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

// RedisConfig is optional; an empty URL disables the features that need it.
type RedisConfig struct {
	URL          string        `envconfig:"PAINTQUEUE_REDIS_URL"`
	Address      string        `envconfig:"PAINTQUEUE_REDIS_ADDR"`
	Password     string        `envconfig:"PAINTQUEUE_REDIS_PASSWORD"`
	DB           int           `envconfig:"PAINTQUEUE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PAINTQUEUE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PAINTQUEUE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PAINTQUEUE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PAINTQUEUE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PAINTQUEUE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type RateLimitConfig struct {
	LookupWindow time.Duration `envconfig:"PAINTQUEUE_RATE_LIMIT_LOOKUP_WINDOW" default:"1m"`
	LookupLimit  int           `envconfig:"PAINTQUEUE_RATE_LIMIT_LOOKUP_LIMIT" default:"30"`

	// TrustedProxies are CIDRs whose X-Forwarded-For headers identify the client.
	TrustedProxies []netip.Prefix `envconfig:"PAINTQUEUE_RATE_LIMIT_TRUSTED_PROXIES"`
}

type OrdersConfig struct {
	ArchiveCutoffDays int `envconfig:"PAINTQUEUE_ORDERS_ARCHIVE_CUTOFF_DAYS" default:"21"`
	ListLimit         int `envconfig:"PAINTQUEUE_ORDERS_LIST_LIMIT" default:"100"`
}

type FeatureFlagsConfig struct {
	UseSQLite      bool `envconfig:"PAINTQUEUE_USE_SQLITE" default:"false"`
	AutoMigrate    bool `envconfig:"PAINTQUEUE_AUTO_MIGRATE" default:"false"`
	AdminActionLog bool `envconfig:"PAINTQUEUE_FEATURE_ADMIN_ACTION_LOG" default:"false"`
}

// ensureDSN resolves the connection string: explicit DSN, then DATABASE_URL,
// then the discrete host/user/name settings.
func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if v := strings.TrimSpace(os.Getenv(EnvDatabaseURL)); v != "" {
		db.DSN = v
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:paintqueue.db?_foreign_keys=on"
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s, %s or %s are required", EnvDBDSN, EnvDatabaseURL, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	sslMode := db.SSLMode
	if db.SSL {
		sslMode = "require"
	}
	if sslMode != "" {
		q := u.Query()
		q.Set("sslmode", sslMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
