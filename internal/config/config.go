package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default location of the storefront config file.
const ConfigPath = "config.yaml"

// Cart storage backends.
const (
	CartStorageMemory = "memory"
	CartStorageFile   = "file"
	CartStorageRedis  = "redis"
)

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	DatabaseURL string `yaml:"databaseURL"`
	SeedCatalog bool   `yaml:"seedCatalog"`

	CartStorage    string `yaml:"cartStorage"`
	CartKey        string `yaml:"cartKey"`
	CartTTL        string `yaml:"cartTTL"`
	DataDir        string `yaml:"dataDir"`
	RedisAddr      string `yaml:"redisAddr"`
	RedisPassword  string `yaml:"redisPassword"`
	TrustForwarded bool   `yaml:"trustForwarded"`

	AnalyticsStream string `yaml:"analyticsStream"`
	AMQPURL         string `yaml:"amqpURL"`
	AMQPExchange    string `yaml:"amqpExchange"`

	CartRateLimitPerMinute int `yaml:"cartRateLimitPerMinute"`
}

// Load reads config from path (defaults to config.yaml) and applies
// environment overrides.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if v := os.Getenv("STOREFRONT_PORT"); v != "" {
		cfg.Port = strings.TrimSpace(v)
	}
	if v := os.Getenv("STOREFRONT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("STOREFRONT_SEED_CATALOG"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.SeedCatalog = b
		}
	}
	if v := os.Getenv("STOREFRONT_CART_STORAGE"); v != "" {
		cfg.CartStorage = strings.TrimSpace(v)
	}
	if v := os.Getenv("STOREFRONT_CART_KEY"); v != "" {
		cfg.CartKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("STOREFRONT_CART_TTL"); v != "" {
		cfg.CartTTL = strings.TrimSpace(v)
	}
	if v := os.Getenv("STOREFRONT_DATA_DIR"); v != "" {
		cfg.DataDir = strings.TrimSpace(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("STOREFRONT_TRUST_FORWARDED"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.TrustForwarded = b
		}
	}
	if v := os.Getenv("STOREFRONT_ANALYTICS_STREAM"); v != "" {
		cfg.AnalyticsStream = strings.TrimSpace(v)
	}
	if v := os.Getenv("AMQP_URL"); v != "" {
		cfg.AMQPURL = v
	}
	if v := os.Getenv("AMQP_EXCHANGE"); v != "" {
		cfg.AMQPExchange = strings.TrimSpace(v)
	}
	if v := os.Getenv("STOREFRONT_CART_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.CartRateLimitPerMinute = n
		}
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml or STOREFRONT_PORT)")
	}
	switch cfg.CartStorage {
	case "", CartStorageMemory:
	case CartStorageFile:
		if strings.TrimSpace(cfg.DataDir) == "" {
			return errors.New("config: dataDir is required for file cart storage")
		}
	case CartStorageRedis:
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return errors.New("config: redisAddr is required for redis cart storage")
		}
	default:
		return fmt.Errorf("config: unknown cartStorage %q (memory, file or redis)", cfg.CartStorage)
	}
	if cfg.AnalyticsStream != "" && strings.TrimSpace(cfg.RedisAddr) == "" {
		return errors.New("config: redisAddr is required when analyticsStream is set")
	}
	if cfg.CartRateLimitPerMinute < 0 {
		return errors.New("config: cartRateLimitPerMinute must be >= 0")
	}
	if cfg.CartRateLimitPerMinute > 0 && strings.TrimSpace(cfg.RedisAddr) == "" {
		return errors.New("config: redisAddr is required for cart rate limiting")
	}
	return nil
}

// ParseCartTTL parses the optional cart TTL duration string.
func ParseCartTTL(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid cartTTL duration: %w", err)
	}
	return dur, nil
}
