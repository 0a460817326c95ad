package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMemory     = "memory"
	StorePersistent = "persistent"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"        validate:"required,numeric"`
	Env      string `env:"ENV,       default=development" validate:"oneof=development production test"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// StoreDriver selects where credentials are kept: memory for a single
	// process, persistent for Redis plus MongoDB.
	StoreDriver  string `env:"STORE_DRIVER,  default=memory" validate:"oneof=memory persistent"`
	AuditWorkers int    `env:"AUDIT_WORKERS, default=4"      validate:"gte=0,lte=64"`

	Backend BackendConfig
	Session SessionConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type BackendConfig struct {
	URL     string        `env:"BACKEND_URL,     default=http://localhost:8000" validate:"required,url"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=10s"                   validate:"gt=0"`
}

type SessionConfig struct {
	Cookie       string        `env:"SESSION_COOKIE,        default=crm_session" validate:"required"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE, default=false"`
	AccessTTL    time.Duration `env:"SESSION_ACCESS_TTL,    default=30m"         validate:"gt=0"`
	IdleTTL      time.Duration `env:"SESSION_IDLE_TTL,      default=30m"         validate:"gt=0"`
	// RefreshRetention bounds how long an untouched refresh credential is kept.
	RefreshRetention time.Duration `env:"SESSION_REFRESH_RETENTION, default=168h" validate:"gt=0"`
	// StoreSecret enables at-rest sealing of stored credentials when set.
	StoreSecret string `env:"SESSION_STORE_SECRET" validate:"omitempty,min=32"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=marketing_crm_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Persistent reports whether credentials go to Redis and MongoDB.
func (c *Config) Persistent() bool { return c.StoreDriver == StorePersistent }

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Persistent() && (cfg.Mongo.URI == "" || cfg.Redis.Addr == "") {
		return nil, fmt.Errorf("invalid configuration: %s store needs MONGO_URI and REDIS_ADDR", StorePersistent)
	}
	return &cfg, nil
}
