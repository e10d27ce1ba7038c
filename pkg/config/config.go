package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	Storage StorageConfig
	DB      DBConfig
	Redis   RedisConfig
	Catalog CatalogConfig
	Session SessionConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CATALOGCART_APP_ENV" required:"true"`
	Port         string `envconfig:"CATALOGCART_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CATALOGCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CATALOGCART_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"CATALOGCART_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorageConfig selects where serialized carts are kept.
type StorageConfig struct {
	Driver  string `envconfig:"CATALOGCART_STORAGE_DRIVER" default:"memory"`
	CartKey string `envconfig:"CATALOGCART_STORAGE_CART_KEY" default:"cart"`
}

type DBConfig struct {
	DSN         string `envconfig:"CATALOGCART_DB_DSN" default:"file:catalogcart.db?cache=shared"`
	Driver      string `envconfig:"CATALOGCART_DB_DRIVER" default:"sqlite"`
	AutoMigrate bool   `envconfig:"CATALOGCART_DB_AUTO_MIGRATE" default:"true"`

	MaxOpenConns    int           `envconfig:"CATALOGCART_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"CATALOGCART_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"CATALOGCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CATALOGCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CATALOGCART_REDIS_URL"`
	Address      string        `envconfig:"CATALOGCART_REDIS_ADDR"`
	Password     string        `envconfig:"CATALOGCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"CATALOGCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CATALOGCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CATALOGCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CATALOGCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CATALOGCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CATALOGCART_REDIS_WRITE_TIMEOUT" default:"5s"`
	CartTTL      time.Duration `envconfig:"CATALOGCART_REDIS_CART_TTL" default:"0s"`
}

// CatalogConfig points at the seed files; an empty Dir uses the embedded catalog.
type CatalogConfig struct {
	Dir string `envconfig:"CATALOGCART_CATALOG_DIR"`
}

type SessionConfig struct {
	CookieName string        `envconfig:"CATALOGCART_SESSION_COOKIE" default:"cc_session"`
	CookieTTL  time.Duration `envconfig:"CATALOGCART_SESSION_COOKIE_TTL" default:"720h"`
}

func (c *Config) validate() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case StorageDriverMemory:
	case StorageDriverRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("%s or %s is required for the redis storage driver", EnvRedisURL, EnvRedisAddr)
		}
	case StorageDriverSQL:
		if err := c.DB.validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvStorageDriver, c.Storage.Driver)
	}
	if strings.TrimSpace(c.Storage.CartKey) == "" {
		return fmt.Errorf("%s cannot be blank", EnvStorageCartKey)
	}
	return nil
}

func (db *DBConfig) validate() error {
	db.Driver = strings.ToLower(strings.TrimSpace(db.Driver))
	if db.Driver != DBDriverSQLite && db.Driver != DBDriverPostgres {
		return fmt.Errorf("unsupported %s %q", EnvDBDriver, db.Driver)
	}
	if strings.TrimSpace(db.DSN) == "" {
		return fmt.Errorf("%s is required for the sql storage driver", EnvDBDSN)
	}
	return nil
}
