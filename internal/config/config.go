// Package config handles configuration loading for newsdesk.
// It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"    yaml:"http"`
	Yahoo   YahooConfig   `mapstructure:"yahoo"   yaml:"yahoo"`
	Finnhub FinnhubConfig `mapstructure:"finnhub" yaml:"finnhub"`
	Console ConsoleConfig `mapstructure:"console" yaml:"console"`
	Export  ExportConfig  `mapstructure:"export"  yaml:"export"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// HTTPConfig holds settings shared by every upstream request.
type HTTPConfig struct {
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec" validate:"min=1"`
	UserAgent  string `mapstructure:"user_agent"  yaml:"user_agent"`
	CacheBust  bool   `mapstructure:"cache_bust"  yaml:"cache_bust"` // append _ts=<unix> to every URL
}

// Timeout returns the per-request timeout.
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// YahooConfig holds the quote and chart endpoint variants, tried in order.
type YahooConfig struct {
	QuoteHosts      []string `mapstructure:"quote_hosts"      yaml:"quote_hosts"      validate:"min=1,dive,url"`
	ChartHosts      []string `mapstructure:"chart_hosts"      yaml:"chart_hosts"      validate:"min=1,dive,url"`
	FallbackWorkers int      `mapstructure:"fallback_workers" yaml:"fallback_workers" validate:"min=1"`
}

// FinnhubConfig holds the fundamentals provider settings.
type FinnhubConfig struct {
	APIKey     string `mapstructure:"api_key"      yaml:"api_key"`
	BaseURL    string `mapstructure:"base_url"     yaml:"base_url"     validate:"url"`
	RatePerSec int    `mapstructure:"rate_per_sec" yaml:"rate_per_sec" validate:"min=0"` // 0 disables limiting
	Retries    int    `mapstructure:"retries"      yaml:"retries"      validate:"min=1"`
	BackoffMS  int    `mapstructure:"backoff_ms"   yaml:"backoff_ms"   validate:"min=0"`
	NewsDays   int    `mapstructure:"news_days"    yaml:"news_days"    validate:"min=1"`
	NewsLimit  int    `mapstructure:"news_limit"   yaml:"news_limit"   validate:"min=1"`
}

// Backoff returns the initial retry delay.
func (c FinnhubConfig) Backoff() time.Duration {
	return time.Duration(c.BackoffMS) * time.Millisecond
}

// ConsoleConfig holds interactive shell settings.
type ConsoleConfig struct {
	TickerSymbols  []string `mapstructure:"ticker_symbols"  yaml:"ticker_symbols"` // empty: the markets board
	TickerSchedule string   `mapstructure:"ticker_schedule" yaml:"ticker_schedule" validate:"omitempty,cron"`
	StripHTML      bool     `mapstructure:"strip_html"      yaml:"strip_html"`
}

// ExportConfig holds static-site exporter settings.
type ExportConfig struct {
	OutDir         string   `mapstructure:"out_dir"         yaml:"out_dir"         validate:"required"`
	Schedule       string   `mapstructure:"schedule"        yaml:"schedule"        validate:"omitempty,cron"`
	HeadlinesURL   string   `mapstructure:"headlines_url"   yaml:"headlines_url"   validate:"url"`
	HeadlinesLimit int      `mapstructure:"headlines_limit" yaml:"headlines_limit" validate:"min=1"`
	FeedItemLimit  int      `mapstructure:"feed_item_limit" yaml:"feed_item_limit" validate:"min=1"`
	Concurrency    int      `mapstructure:"concurrency"     yaml:"concurrency"     validate:"min=1"`
	CopyFiles      []string `mapstructure:"copy_files"      yaml:"copy_files"`
}

// APIConfig holds HTTP/WebSocket server settings.
type APIConfig struct {
	Host           string   `mapstructure:"host"            yaml:"host"`
	Port           int      `mapstructure:"port"            yaml:"port"            validate:"min=1,max=65535"`
	CORSOrigins    []string `mapstructure:"cors_origins"    yaml:"cors_origins"`
	SiteDir        string   `mapstructure:"site_dir"        yaml:"site_dir"` // served at / when set
	TickerSchedule string   `mapstructure:"ticker_schedule" yaml:"ticker_schedule" validate:"omitempty,cron"`
}

// Addr returns host:port.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.newsdesk/config.yaml (home directory)
//  3. /etc/newsdesk/config.yaml (system)
//
// Environment variables override config file values.
// Format: NEWSDESK_<SECTION>_<KEY>, e.g., NEWSDESK_FINNHUB_API_KEY
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".newsdesk"))
	v.AddConfigPath("/etc/newsdesk")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("NEWSDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("http.timeout_sec", 15)
	v.SetDefault("http.user_agent", "Mozilla/5.0 (compatible; newsdesk/1.0)")
	v.SetDefault("http.cache_bust", true)

	v.SetDefault("yahoo.quote_hosts", []string{"https://query1.finance.yahoo.com", "https://query2.finance.yahoo.com"})
	v.SetDefault("yahoo.chart_hosts", []string{"https://query1.finance.yahoo.com", "https://query2.finance.yahoo.com"})
	v.SetDefault("yahoo.fallback_workers", 4)

	v.SetDefault("finnhub.api_key", "")
	v.SetDefault("finnhub.base_url", "https://finnhub.io/api/v1")
	v.SetDefault("finnhub.rate_per_sec", 30)
	v.SetDefault("finnhub.retries", 3)
	v.SetDefault("finnhub.backoff_ms", 800)
	v.SetDefault("finnhub.news_days", 10)
	v.SetDefault("finnhub.news_limit", 10)

	v.SetDefault("console.ticker_symbols", []string{})
	v.SetDefault("console.ticker_schedule", "@every 1m")
	v.SetDefault("console.strip_html", false)

	v.SetDefault("export.out_dir", "site/data")
	v.SetDefault("export.schedule", "*/15 * * * *")
	v.SetDefault("export.headlines_url", "https://rss.politico.com/politics-news.xml")
	v.SetDefault("export.headlines_limit", 5)
	v.SetDefault("export.feed_item_limit", 20)
	v.SetDefault("export.concurrency", 6)
	v.SetDefault("export.copy_files", []string{})

	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})
	v.SetDefault("api.site_dir", "")
	v.SetDefault("api.ticker_schedule", "@every 30s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv reads the Finnhub key from FINNHUB_API_KEY when the
// prefixed variable is not set.
func overrideFromEnv(cfg *Config) {
	if os.Getenv(EnvFinnhubKey) != "" {
		return
	}
	if key := os.Getenv(EnvFinnhubKeyLegacy); key != "" {
		cfg.Finnhub.APIKey = key
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("cron", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks value ranges and schedule expressions.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
