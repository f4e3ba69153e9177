package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv   = "TRANSITPASS_APP_ENV"
	EnvDBDSN    = "TRANSITPASS_DB_DSN"
	EnvDBHost   = "TRANSITPASS_DB_HOST"
	EnvDBUser   = "TRANSITPASS_DB_USER"
	EnvDBName   = "TRANSITPASS_DB_NAME"
	EnvRedisURL = "TRANSITPASS_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	OCR          OCRConfig
	Sweep        SweepConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TRANSITPASS_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"TRANSITPASS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRANSITPASS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "prod")
}

type DBConfig struct {
	DSN string `envconfig:"TRANSITPASS_DB_DSN"`

	LegacyHost     string `envconfig:"TRANSITPASS_DB_HOST"`
	LegacyPort     int    `envconfig:"TRANSITPASS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TRANSITPASS_DB_USER"`
	LegacyPassword string `envconfig:"TRANSITPASS_DB_PASSWORD"`
	LegacyName     string `envconfig:"TRANSITPASS_DB_NAME"`
	LegacySSLMode  string `envconfig:"TRANSITPASS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TRANSITPASS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TRANSITPASS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TRANSITPASS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRANSITPASS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TRANSITPASS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TRANSITPASS_REDIS_ADDR"`
	Password     string        `envconfig:"TRANSITPASS_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRANSITPASS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRANSITPASS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRANSITPASS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRANSITPASS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRANSITPASS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRANSITPASS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// OCRConfig points at the text-recognition service used to read ID proofs.
type OCRConfig struct {
	BaseURL  string        `envconfig:"TRANSITPASS_OCR_BASE_URL" required:"true"`
	APIKey   string        `envconfig:"TRANSITPASS_OCR_API_KEY"`
	Language string        `envconfig:"TRANSITPASS_OCR_LANGUAGE" default:"eng"`
	Timeout  time.Duration `envconfig:"TRANSITPASS_OCR_TIMEOUT" default:"10s"`
}

// SweepConfig tunes the expiry-reminder worker. The interval controls how
// often a cycle is attempted; the per-day marker in Redis keeps the sweep at
// one run per calendar day regardless.
type SweepConfig struct {
	Interval time.Duration `envconfig:"TRANSITPASS_SWEEP_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"TRANSITPASS_SWEEP_LOCK_TTL" default:"25h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TRANSITPASS_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
