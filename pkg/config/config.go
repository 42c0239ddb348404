package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"TrendBoard/internal/domain/models"
	drepo "TrendBoard/internal/domain/repository"
	"TrendBoard/internal/service/ratelimit"
	applogger "TrendBoard/pkg/logger"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string           `yaml:"environment" default:"development"`
	Server      ServerConfig     `yaml:"server"`
	Log         applogger.Config `yaml:"log"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	Exchange    ExchangeConfig   `yaml:"exchange"`
	Screener    ScreenerConfig   `yaml:"screener"`
	RateLimit   ratelimit.Config `yaml:"ratelimit"`
	Persistence Persistence      `yaml:"persistence"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"120s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	SlowThreshold   time.Duration `yaml:"slow_threshold" default:"30s"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

type ExchangeConfig struct {
	BaseURL    string        `yaml:"base_url" default:"https://fapi.binance.com"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout" default:"10s"`
	QuoteAsset string        `yaml:"quote_asset"`
}

type ScreenerConfig struct {
	Interval string            `yaml:"interval" default:"5m"`
	Limit    int               `yaml:"limit" default:"1000"`
	Workers  int               `yaml:"workers" default:"10"`
	Timeout  time.Duration     `yaml:"timeout" default:"90s"` // whole-run deadline
	Ema      models.EmaPeriods `yaml:"ema"`
}

type Persistence struct {
	JSON  JSONSinkConfig  `yaml:"json"`
	Redis RedisSinkConfig `yaml:"redis"`
	Kafka KafkaSinkConfig `yaml:"kafka"`
}

type JSONSinkConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"precos_futuros.json"`
	Indent  int    `yaml:"indent" default:"4"`
}

type RedisSinkConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr" default:"localhost:6379"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix" default:"trendboard"`
	TTL      time.Duration `yaml:"ttl" default:"1h"`
}

type KafkaSinkConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic" default:"trendboard.snapshots"`
	RequiredAcks int           `yaml:"required_acks" default:"-1"`
	Compression  string        `yaml:"compression" default:"snappy"`
	MaxAttempts  int           `yaml:"max_attempts" default:"3"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	return &c
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML, or the defaults when path is empty,
// and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(k string) (string, bool) {
		v, ok := lookup(k)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("BINANCE_API_KEY"); ok {
		c.Exchange.APIKey = v
	}
	if v, ok := get("BINANCE_BASE_URL"); ok {
		c.Exchange.BaseURL = v
	}
	if v, ok := get("SCREENER_INTERVAL"); ok {
		c.Screener.Interval = v
	}
	if v, ok := get("SCREENER_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SCREENER_WORKERS: %w", err)
		}
		c.Screener.Workers = n
	}
	if v, ok := get("HTTP_PORT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Server.Port = n
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := get("REDIS_ADDR"); ok {
		c.Persistence.Redis.Addr = v
		c.Persistence.Redis.Enabled = true
	}
	if v, ok := get("KAFKA_BROKERS"); ok {
		c.Persistence.Kafka.Brokers = strings.Split(v, ",")
		c.Persistence.Kafka.Enabled = true
	}
	if v, ok := get("KAFKA_TOPIC"); ok {
		c.Persistence.Kafka.Topic = v
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port))
	}
	if c.Exchange.BaseURL == "" {
		errs = append(errs, errors.New("exchange.base_url is required"))
	}
	if !drepo.IsValidInterval(drepo.Interval(c.Screener.Interval)) {
		errs = append(errs, fmt.Errorf("screener.interval %q is not a supported interval", c.Screener.Interval))
	}
	if c.Screener.Limit < 1 || c.Screener.Limit > 1500 {
		errs = append(errs, fmt.Errorf("screener.limit must be in 1..1500, got %d", c.Screener.Limit))
	}
	if c.Screener.Workers < 1 {
		errs = append(errs, fmt.Errorf("screener.workers must be positive, got %d", c.Screener.Workers))
	}
	for _, p := range c.Screener.Ema.List() {
		if p < 1 {
			errs = append(errs, fmt.Errorf("screener.ema periods must be positive, got %v", c.Screener.Ema.List()))
			break
		}
	}
	if c.RateLimit.Enabled && (c.RateLimit.Capacity < 1 || c.RateLimit.RefillPerSec <= 0) {
		errs = append(errs, errors.New("ratelimit.capacity must be >= 1 and refill_per_sec > 0"))
	}
	if c.Persistence.Kafka.Enabled {
		if len(c.Persistence.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("persistence.kafka.brokers cannot be empty"))
		}
		if c.Persistence.Kafka.Topic == "" {
			errs = append(errs, errors.New("persistence.kafka.topic is required"))
		}
	}
	if c.Persistence.Redis.Enabled && c.Persistence.Redis.Addr == "" {
		errs = append(errs, errors.New("persistence.redis.addr is required"))
	}
	return errors.Join(errs...)
}
