package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth         AuthConfig
	Verification VerificationConfig
	Mongo        MongoConfig
	Redis        RedisConfig
	Mail         MailConfig
}

type AuthConfig struct {
	JWTSecret   string        `env:"JWT_SECRET"`
	JWTIssuer   string        `env:"JWT_ISSUER,   default=auth-system"`
	SessionTTL  time.Duration `env:"JWT_TTL,      default=1h"`
	BcryptCost  int           `env:"BCRYPT_COST,  default=10"`
	PhoneRegion string        `env:"PHONE_REGION, default=US"`
	// Denylist selects token revocation storage: redis, memory or none.
	Denylist string `env:"DENYLIST, default=redis"`
}

type VerificationConfig struct {
	TTL     time.Duration `env:"VERIFICATION_TTL, default=24h"`
	LinkURL string        `env:"VERIFY_URL"`
}

type MongoConfig struct {
	URI         string        `env:"MONGO_URI,       default=mongodb://localhost:27017"`
	Database    string        `env:"MONGO_DB,        default=auth_system"`
	MaxPoolSize uint64        `env:"MONGO_MAX_POOL,  default=50"`
	Timeout     time.Duration `env:"MONGO_TIMEOUT,   default=10s"`
}

type RedisConfig struct {
	// URL overrides the discrete fields below when set.
	URL      string        `env:"REDIS_URL"`
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	PoolSize int           `env:"REDIS_POOL_SIZE"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT,  default=5s"`
}

type MailConfig struct {
	// AMQPURL enables the RabbitMQ publisher; empty means mails are logged.
	AMQPURL  string `env:"AMQP_URL"`
	Exchange string `env:"AMQP_EXCHANGE, default=auth.events"`
	Workers  int    `env:"MAIL_WORKERS,  default=4"`
}

const (
	DenylistRedis  = "redis"
	DenylistMemory = "memory"
	DenylistNone   = "none"
)

// Load reads configuration from environment variables using go-envconfig.
// It panics on invalid configuration: the process cannot start without it.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.Verification.TTL <= 0 {
		errs = append(errs, errors.New("VERIFICATION_TTL must be positive"))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	switch c.Auth.Denylist {
	case DenylistRedis, DenylistMemory, DenylistNone:
	default:
		errs = append(errs, fmt.Errorf("DENYLIST must be one of: redis memory none, got %q", c.Auth.Denylist))
	}
	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
