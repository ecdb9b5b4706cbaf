package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	Backend  BackendConfig
	Pricing  PricingConfig
	Tracking TrackingConfig
	Driver   DriverConfig
	CartDB   CartDBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Mapbox   MapboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ORDERCORE_APP_ENV" default:"dev"`
	Port         string `envconfig:"ORDERCORE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ORDERCORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ORDERCORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig points at the remote order/route service.
type BackendConfig struct {
	BaseURL string        `envconfig:"ORDERCORE_BACKEND_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"ORDERCORE_BACKEND_TIMEOUT" default:"10s"`
}

type PricingConfig struct {
	TaxRate          float64 `envconfig:"ORDERCORE_TAX_RATE" default:"0.08"`
	DeliveryFeeCents int64   `envconfig:"ORDERCORE_DELIVERY_FEE_CENTS" default:"399"`
}

type TrackingConfig struct {
	PollInterval      time.Duration `envconfig:"ORDERCORE_TRACKING_POLL_INTERVAL" default:"30s"`
	ConfirmationDelay time.Duration `envconfig:"ORDERCORE_CHECKOUT_CONFIRMATION_DELAY" default:"2s"`
}

type DriverConfig struct {
	MaxDestinationsPerMatrix int           `envconfig:"ORDERCORE_MAX_DEST_PER_MATRIX" default:"24"`
	GeocodeCacheTTL          time.Duration `envconfig:"ORDERCORE_GEOCODE_CACHE_TTL" default:"24h"`
	ReadyFeedCacheTTL        time.Duration `envconfig:"ORDERCORE_READY_FEED_CACHE_TTL" default:"30s"`
}

// CartDBConfig locates the scoped local cart storage file.
type CartDBConfig struct {
	Path string `envconfig:"ORDERCORE_CART_DB_PATH" default:"ordercore_cart.db"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ORDERCORE_REDIS_URL"`
	Address      string        `envconfig:"ORDERCORE_REDIS_ADDR"`
	Password     string        `envconfig:"ORDERCORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORDERCORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORDERCORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ORDERCORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ORDERCORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORDERCORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORDERCORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured at all.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// JWTConfig validates the session tokens issued by the auth collaborator.
type JWTConfig struct {
	Secret string `envconfig:"ORDERCORE_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"ORDERCORE_JWT_ISSUER" required:"true"`
}

type MapboxConfig struct {
	Token string `envconfig:"ORDERCORE_MAPBOX_TOKEN"`
}
