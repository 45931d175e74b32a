// Package config loads feed generator configuration from an optional YAML
// file, a .env file and FEED_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Sink kinds.
const (
	SinkFile  = "file"
	SinkRedis = "redis"
)

// Throttle store kinds.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// maxPageDelay bounds feed.page_delay.
const maxPageDelay = 5 * time.Second

// Config holds all configuration for the application
type Config struct {
	Shop     ShopConfig     `mapstructure:"shop"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Retry    RetryConfig    `mapstructure:"retry"`
	Throttle ThrottleConfig `mapstructure:"throttle"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// ShopConfig holds GraphQL Admin API connection details
type ShopConfig struct {
	Domain      string        `mapstructure:"domain"`
	AccessToken string        `mapstructure:"access_token"`
	APIVersion  string        `mapstructure:"api_version"`
	Timeout     time.Duration `mapstructure:"timeout"`
	// BaseURL overrides https://{domain}; used against local fakes
	BaseURL string `mapstructure:"base_url"`
}

// FeedConfig holds feed generation and storage settings
type FeedConfig struct {
	FileName     string        `mapstructure:"file_name"`
	PageDelay    time.Duration `mapstructure:"page_delay"`
	PageSize     int           `mapstructure:"page_size"`
	Sink         string        `mapstructure:"sink"`
	OutputDir    string        `mapstructure:"output_dir"`
	PublicPrefix string        `mapstructure:"public_prefix"`
	TTL          time.Duration `mapstructure:"ttl"`
}

// RetryConfig holds throttling retry settings
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
}

// ThrottleConfig holds query cost tracking settings
type ThrottleConfig struct {
	Store        string  `mapstructure:"store"`
	MinAvailable float64 `mapstructure:"min_available"`
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load reads configuration. configFile may be empty, in which case
// config.yaml is looked up in the working directory and is optional.
// Environment variables override file values, e.g. FEED_SHOP_DOMAIN.
func Load(configFile string) (*Config, error) {
	// Missing .env is fine
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("shop.domain", "")
	v.SetDefault("shop.access_token", "")
	v.SetDefault("shop.api_version", "2024-10")
	v.SetDefault("shop.timeout", 30*time.Second)
	v.SetDefault("shop.base_url", "")

	v.SetDefault("feed.file_name", "shopify-tweakwise-feed.xml")
	v.SetDefault("feed.page_delay", 300*time.Millisecond)
	v.SetDefault("feed.page_size", 25)
	v.SetDefault("feed.sink", SinkFile)
	v.SetDefault("feed.output_dir", "./public")
	v.SetDefault("feed.public_prefix", "")
	v.SetDefault("feed.ttl", 24*time.Hour)

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.base_delay", time.Second)

	v.SetDefault("throttle.store", StoreMemory)
	v.SetDefault("throttle.min_available", 100)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Shop.Domain == "" && c.Shop.BaseURL == "" {
		return errors.New("shop.domain is required")
	}
	if c.Shop.AccessToken == "" {
		return errors.New("shop.access_token is required")
	}
	if c.Shop.APIVersion == "" {
		return errors.New("shop.api_version is required")
	}

	switch c.Feed.Sink {
	case SinkFile:
		if c.Feed.OutputDir == "" {
			return errors.New("feed.output_dir is required for the file sink")
		}
	case SinkRedis:
	default:
		return fmt.Errorf("feed.sink %q is not one of %s, %s", c.Feed.Sink, SinkFile, SinkRedis)
	}

	switch c.Throttle.Store {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("throttle.store %q is not one of %s, %s", c.Throttle.Store, StoreMemory, StoreRedis)
	}

	if c.Feed.PageDelay < 0 || c.Feed.PageDelay > maxPageDelay {
		return fmt.Errorf("feed.page_delay %v must be between 0 and %v", c.Feed.PageDelay, maxPageDelay)
	}
	if c.Feed.PageSize < 1 || c.Feed.PageSize > 250 {
		return fmt.Errorf("feed.page_size %d must be between 1 and 250", c.Feed.PageSize)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts %d must be at least 1", c.Retry.MaxAttempts)
	}

	return nil
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Feed.Sink == SinkRedis || c.Throttle.Store == StoreRedis
}
