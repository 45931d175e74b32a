package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Shop:     ShopConfig{Domain: "demo.myshopify.com", AccessToken: "shpat_test", APIVersion: "2024-10"},
		Feed:     FeedConfig{Sink: SinkFile, OutputDir: "./public", PageDelay: 300 * time.Millisecond, PageSize: 25},
		Retry:    RetryConfig{MaxAttempts: 3, BaseDelay: time.Second},
		Throttle: ThrottleConfig{Store: StoreMemory, MinAvailable: 100},
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Shop.APIVersion != "2024-10" {
		t.Errorf("APIVersion = %q", cfg.Shop.APIVersion)
	}
	if cfg.Feed.FileName != "shopify-tweakwise-feed.xml" {
		t.Errorf("FileName = %q", cfg.Feed.FileName)
	}
	if cfg.Feed.PageDelay != 300*time.Millisecond {
		t.Errorf("PageDelay = %v", cfg.Feed.PageDelay)
	}
	if cfg.Retry.MaxAttempts != 3 || cfg.Retry.BaseDelay != time.Second {
		t.Errorf("Retry = %+v", cfg.Retry)
	}
	if cfg.Feed.Sink != SinkFile || cfg.Throttle.Store != StoreMemory {
		t.Errorf("Sink = %q, Store = %q", cfg.Feed.Sink, cfg.Throttle.Store)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FEED_SHOP_DOMAIN", "env.myshopify.com")
	t.Setenv("FEED_SHOP_ACCESS_TOKEN", "shpat_env")
	t.Setenv("FEED_FEED_PAGE_DELAY", "250ms")
	t.Setenv("FEED_RETRY_MAX_ATTEMPTS", "5")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Shop.Domain != "env.myshopify.com" || cfg.Shop.AccessToken != "shpat_env" {
		t.Errorf("Shop = %+v", cfg.Shop)
	}
	if cfg.Feed.PageDelay != 250*time.Millisecond {
		t.Errorf("PageDelay = %v, want 250ms", cfg.Feed.PageDelay)
	}
	if cfg.Retry.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.Retry.MaxAttempts)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "feed.yaml")
	content := `
shop:
  domain: file.myshopify.com
  access_token: shpat_file
feed:
  sink: redis
  ttl: 2h
redis:
  addr: redis:6379
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Shop.Domain != "file.myshopify.com" {
		t.Errorf("Domain = %q", cfg.Shop.Domain)
	}
	if cfg.Feed.Sink != SinkRedis || cfg.Feed.TTL != 2*time.Hour {
		t.Errorf("Feed = %+v", cfg.Feed)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
	if !cfg.UsesRedis() {
		t.Error("UsesRedis() should be true with the redis sink")
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := Load("does-not-exist.yaml"); err == nil {
		t.Error("Load() should fail for a missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}, wantErr: false},
		{name: "missing domain", mutate: func(c *Config) { c.Shop.Domain = "" }, wantErr: true},
		{name: "base url replaces domain", mutate: func(c *Config) { c.Shop.Domain = ""; c.Shop.BaseURL = "http://localhost:9000" }, wantErr: false},
		{name: "missing token", mutate: func(c *Config) { c.Shop.AccessToken = "" }, wantErr: true},
		{name: "unknown sink", mutate: func(c *Config) { c.Feed.Sink = "s3" }, wantErr: true},
		{name: "file sink without dir", mutate: func(c *Config) { c.Feed.OutputDir = "" }, wantErr: true},
		{name: "redis sink", mutate: func(c *Config) { c.Feed.Sink = SinkRedis; c.Feed.OutputDir = "" }, wantErr: false},
		{name: "unknown store", mutate: func(c *Config) { c.Throttle.Store = "etcd" }, wantErr: true},
		{name: "negative page delay", mutate: func(c *Config) { c.Feed.PageDelay = -time.Millisecond }, wantErr: true},
		{name: "page delay too long", mutate: func(c *Config) { c.Feed.PageDelay = 6 * time.Second }, wantErr: true},
		{name: "zero page delay", mutate: func(c *Config) { c.Feed.PageDelay = 0 }, wantErr: false},
		{name: "page size too large", mutate: func(c *Config) { c.Feed.PageSize = 251 }, wantErr: true},
		{name: "zero attempts", mutate: func(c *Config) { c.Retry.MaxAttempts = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
