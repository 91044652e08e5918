package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr     string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Cookie  Cookie
	Catalog Catalog
	Storage Storage

	// SessionIdleTTL closes cart stores that saw no request for this long.
	SessionIdleTTL time.Duration `env:"CART_SESSION_IDLE_TTL" envDefault:"30m"`
}

type Cookie struct {
	Name   string `env:"CART_COOKIE_NAME" envDefault:"product_cart_session"`
	Secret string `env:"CART_COOKIE_SECRET"`
	Secure bool   `env:"CART_COOKIE_SECURE" envDefault:"false"`
}

type Catalog struct {
	BaseURL    string        `env:"CATALOG_BASE_URL"`
	APIKey     string        `env:"CATALOG_API_KEY"`
	Timeout    time.Duration `env:"CATALOG_TIMEOUT" envDefault:"5s"`
	CacheTTL   time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"1m"`
	MaxRetries uint          `env:"CATALOG_MAX_RETRIES" envDefault:"2"`
	RatePerSec float64       `env:"CATALOG_RATE_PER_SEC" envDefault:"0"`
}

type Storage struct {
	Driver   string `env:"STORAGE_DRIVER" envDefault:"local"`
	LocalDir string `env:"LOCAL_SLOT_DIR" envDefault:"./storage/carts"`
	S3Region string `env:"S3_REGION"`
	S3Bucket string `env:"S3_BUCKET"`
	S3Prefix string `env:"S3_PREFIX" envDefault:"carts"`
	DSN      string `env:"DB_DSN"`
}

// Load reads .env when present (production uses real env vars) and parses the
// process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return parse(env.Options{})
}

// FromMap parses cfg from an explicit environment, ignoring the process one.
func FromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if strings.TrimSpace(c.Cookie.Secret) == "" {
		errs = append(errs, errors.New("CART_COOKIE_SECRET is required"))
	} else if len(c.Cookie.Secret) < 16 {
		errs = append(errs, errors.New("CART_COOKIE_SECRET must be at least 16 bytes"))
	}
	if strings.TrimSpace(c.Catalog.BaseURL) == "" {
		errs = append(errs, errors.New("CATALOG_BASE_URL is required"))
	}
	for _, d := range []struct {
		name string
		val  time.Duration
	}{
		{"CATALOG_TIMEOUT", c.Catalog.Timeout},
		{"CATALOG_CACHE_TTL", c.Catalog.CacheTTL},
		{"CART_SESSION_IDLE_TTL", c.SessionIdleTTL},
	} {
		if d.val <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", d.name, d.val))
		}
	}
	switch c.Storage.Driver {
	case "local", "memory", "s3", "mysql":
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER %q is not one of local, memory, s3, mysql", c.Storage.Driver))
	}
	return errors.Join(errs...)
}
