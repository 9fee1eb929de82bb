package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every environment variable consumed by the service.
const EnvPrefix = "BEATBAZAAR"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App    AppConfig
	DB     DBConfig
	Redis  RedisConfig
	JWT    JWTConfig
	Khalti KhaltiConfig
	Stripe StripeConfig
	Payout PayoutConfig
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
	Env          string `envconfig:"BEATBAZAAR_APP_ENV" required:"true"`
	Port         string `envconfig:"BEATBAZAAR_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"BEATBAZAAR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BEATBAZAAR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"BEATBAZAAR_DB_DSN"`

	Host     string `envconfig:"BEATBAZAAR_DB_HOST"`
	Port     int    `envconfig:"BEATBAZAAR_DB_PORT" default:"5432"`
	User     string `envconfig:"BEATBAZAAR_DB_USER"`
	Password string `envconfig:"BEATBAZAAR_DB_PASSWORD"`
	Name     string `envconfig:"BEATBAZAAR_DB_NAME"`
	SSLMode  string `envconfig:"BEATBAZAAR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BEATBAZAAR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BEATBAZAAR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BEATBAZAAR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BEATBAZAAR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BEATBAZAAR_REDIS_URL"`
	Address      string        `envconfig:"BEATBAZAAR_REDIS_ADDR"`
	Password     string        `envconfig:"BEATBAZAAR_REDIS_PASSWORD"`
	DB           int           `envconfig:"BEATBAZAAR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BEATBAZAAR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BEATBAZAAR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BEATBAZAAR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BEATBAZAAR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BEATBAZAAR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BEATBAZAAR_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BEATBAZAAR_JWT_ISSUER" default:"beatbazaar"`
	ExpirationMinutes int    `envconfig:"BEATBAZAAR_JWT_EXPIRATION_MINUTES" default:"60"`
}

// KhaltiConfig holds credentials for the Khalti payment gateway.
type KhaltiConfig struct {
	SecretKey     string        `envconfig:"BEATBAZAAR_KHALTI_SECRET_KEY"`
	Env           string        `envconfig:"BEATBAZAAR_KHALTI_ENV" default:"sandbox"`
	LookupTimeout time.Duration `envconfig:"BEATBAZAAR_KHALTI_LOOKUP_TIMEOUT" default:"10s"`
}

// Environment returns the normalized Khalti environment (sandbox/production).
func (k KhaltiConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(k.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type StripeConfig struct {
	APIKey string `envconfig:"BEATBAZAAR_STRIPE_API_KEY"`
	Env    string `envconfig:"BEATBAZAAR_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// PayoutConfig carries platform-wide seller payout policy.
type PayoutConfig struct {
	DefaultRevenueSharePercent int64 `envconfig:"BEATBAZAAR_PAYOUT_DEFAULT_REVENUE_SHARE" default:"60"`
	MinWithdrawalCents         int64 `envconfig:"BEATBAZAAR_PAYOUT_MIN_WITHDRAWAL_CENTS" default:"1000"`
	RecentTransactionLimit     int   `envconfig:"BEATBAZAAR_PAYOUT_RECENT_TX_LIMIT" default:"50"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	if db.Host == "" {
		missing = append(missing, "BEATBAZAAR_DB_HOST")
	}
	if db.User == "" {
		missing = append(missing, "BEATBAZAAR_DB_USER")
	}
	if db.Name == "" {
		missing = append(missing, "BEATBAZAAR_DB_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("either BEATBAZAAR_DB_DSN or %s are required", strings.Join(missing, ", "))
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
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
