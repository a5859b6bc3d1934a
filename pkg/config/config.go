package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App          AppConfig
	Shopify      ShopifyConfig
	DB           DBConfig
	Redis        RedisConfig
	Pricing      PricingConfig
	Files        FilesConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Shopify.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BACKOFFICE_APP_ENV" default:"development"`
	Port         string `envconfig:"BACKOFFICE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"BACKOFFICE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BACKOFFICE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ShopifyConfig struct {
	StoreDomain string        `envconfig:"SHOPIFY_STORE_DOMAIN"`
	APIVersion  string        `envconfig:"SHOPIFY_API_VERSION" default:"2025-07"`
	AccessToken string        `envconfig:"SHOPIFY_ACCESS_TOKEN"`
	Timeout     time.Duration `envconfig:"SHOPIFY_HTTP_TIMEOUT" default:"30s"`

	RateLimitBackoff time.Duration `envconfig:"SHOPIFY_RATE_LIMIT_BACKOFF" default:"2s"`
	MaxRetries       int           `envconfig:"SHOPIFY_MAX_RETRIES" default:"5"`
}

func (s ShopifyConfig) validate() error {
	if strings.TrimSpace(s.StoreDomain) == "" {
		return fmt.Errorf("SHOPIFY_STORE_DOMAIN is required")
	}
	if strings.TrimSpace(s.AccessToken) == "" {
		return fmt.Errorf("SHOPIFY_ACCESS_TOKEN is required")
	}
	return nil
}

// Domain returns the store domain without scheme or trailing slash.
func (s ShopifyConfig) Domain() string {
	domain := strings.TrimSpace(s.StoreDomain)
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	return strings.TrimSuffix(domain, "/")
}

type DBConfig struct {
	DSN    string `envconfig:"BACKOFFICE_DB_DSN"`
	Driver string `envconfig:"BACKOFFICE_DB_DRIVER" default:"postgres"`

	SQLitePath string `envconfig:"BACKOFFICE_SQLITE_PATH" default:"backoffice.db"`

	MaxOpenConns    int           `envconfig:"BACKOFFICE_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"BACKOFFICE_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"BACKOFFICE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BACKOFFICE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BACKOFFICE_REDIS_URL"`
	Address      string        `envconfig:"BACKOFFICE_REDIS_ADDR"`
	Password     string        `envconfig:"BACKOFFICE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BACKOFFICE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BACKOFFICE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BACKOFFICE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BACKOFFICE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BACKOFFICE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BACKOFFICE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type PricingConfig struct {
	VariantBatchSize  int           `envconfig:"BACKOFFICE_PRICING_VARIANT_BATCH_SIZE" default:"25"`
	InterBatchDelay   time.Duration `envconfig:"BACKOFFICE_PRICING_INTER_BATCH_DELAY" default:"1s"`
	LargeBatchDelay   time.Duration `envconfig:"BACKOFFICE_PRICING_LARGE_BATCH_DELAY" default:"2s"`
	InterProductDelay time.Duration `envconfig:"BACKOFFICE_PRICING_INTER_PRODUCT_DELAY" default:"700ms"`

	ConsistencyRetries int           `envconfig:"BACKOFFICE_PRICING_CONSISTENCY_RETRIES" default:"3"`
	ConsistencyDelay   time.Duration `envconfig:"BACKOFFICE_PRICING_CONSISTENCY_DELAY" default:"2s"`

	RunLockTTL time.Duration `envconfig:"BACKOFFICE_PRICING_RUN_LOCK_TTL" default:"15m"`
}

type FilesConfig struct {
	MaxUploadMB    int    `envconfig:"BACKOFFICE_MAX_UPLOAD_MB" default:"100"`
	TemplatesKey   string `envconfig:"BACKOFFICE_TEMPLATES_METAFIELD_KEY" default:"artworktemplates"`
	ArtworkColumns string `envconfig:"BACKOFFICE_ARTWORK_COLUMNS" default:"artworkfront,artworkback"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BACKOFFICE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BACKOFFICE_AUTO_MIGRATE" default:"false"`
}
