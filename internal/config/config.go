// Package config loads and validates ogimage configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/JakeFAU/ogimage/internal/browser"
	"github.com/JakeFAU/ogimage/internal/cache"
	"github.com/JakeFAU/ogimage/internal/dataset"
	"github.com/JakeFAU/ogimage/internal/detector"
	collyfetcher "github.com/JakeFAU/ogimage/internal/fetcher/colly"
	"github.com/JakeFAU/ogimage/internal/imagefetch"
	"github.com/JakeFAU/ogimage/internal/product"
)

// EnvPrefix namespaces environment overrides, e.g. OGIMAGE_FETCH_TIMEOUT_SECONDS.
const EnvPrefix = "OGIMAGE"

// Config captures all knobs loaded via Viper.
type Config struct {
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Product  ProductConfig  `mapstructure:"product"`
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Fallback FallbackConfig `mapstructure:"fallback"`
	Detector DetectorConfig `mapstructure:"detector"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// FetchConfig controls the single live page request.
type FetchConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// ProductConfig holds the last-resort product URL.
type ProductConfig struct {
	DefaultURL string `mapstructure:"default_url"`
}

// DatasetConfig points at the catalogue CSV.
type DatasetConfig struct {
	Path       string `mapstructure:"path"`
	LinkColumn string `mapstructure:"link_column"`
}

// CacheConfig locates the pipeline's image cache.
type CacheConfig struct {
	FileName           string `mapstructure:"file_name"`
	Path               string `mapstructure:"path"`
	MaxAncestors       int    `mapstructure:"max_ancestors"`
	FirstEntryFallback bool   `mapstructure:"first_entry_fallback"`
}

// FallbackConfig holds the image used when nothing else resolves.
type FallbackConfig struct {
	ImageURL string `mapstructure:"image_url"`
}

// DetectorConfig tunes the client-rendered page heuristic.
type DetectorConfig struct {
	MinHTMLBytes int `mapstructure:"min_html_bytes"`
}

// BrowserConfig toggles opening the result.
type BrowserConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	TimeoutSeconds int  `mapstructure:"timeout_seconds"`
}

// MetricsConfig selects where run metrics are written.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from defaults, an optional .env file, environment
// variables, and the config file at path when set.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("fetch.timeout_seconds", int(collyfetcher.DefaultTimeout/time.Second))
	v.SetDefault("fetch.user_agent", collyfetcher.DefaultUserAgent)
	v.SetDefault("product.default_url", product.DefaultURL)
	v.SetDefault("dataset.path", dataset.DefaultPath)
	v.SetDefault("dataset.link_column", dataset.DefaultLinkColumn)
	v.SetDefault("cache.file_name", cache.DefaultFileName)
	v.SetDefault("cache.path", "")
	v.SetDefault("cache.max_ancestors", 5)
	v.SetDefault("cache.first_entry_fallback", false)
	v.SetDefault("fallback.image_url", imagefetch.DefaultFallbackImageURL)
	v.SetDefault("detector.min_html_bytes", detector.DefaultBodyLengthThreshold)
	v.SetDefault("browser.enabled", true)
	v.SetDefault("browser.timeout_seconds", int(browser.DefaultTimeout/time.Second))
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if strings.TrimSpace(c.Fetch.UserAgent) == "" {
		return fmt.Errorf("fetch.user_agent must be set")
	}
	if strings.TrimSpace(c.Dataset.LinkColumn) == "" {
		return fmt.Errorf("dataset.link_column must be set")
	}
	if strings.TrimSpace(c.Cache.FileName) == "" {
		return fmt.Errorf("cache.file_name must be set")
	}
	if c.Cache.MaxAncestors < 0 {
		return fmt.Errorf("cache.max_ancestors must be >= 0")
	}
	if !isAbsoluteURL(c.Fallback.ImageURL) {
		return fmt.Errorf("fallback.image_url must be an absolute URL")
	}
	if c.Detector.MinHTMLBytes < 0 {
		return fmt.Errorf("detector.min_html_bytes must be >= 0")
	}
	if c.Browser.Enabled && c.Browser.TimeoutSeconds <= 0 {
		return fmt.Errorf("browser.timeout_seconds must be > 0 when browser is enabled")
	}
	return nil
}

// FetchTimeout converts fetch.timeout_seconds to a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// BrowserTimeout converts browser.timeout_seconds to a duration.
func (c Config) BrowserTimeout() time.Duration {
	return time.Duration(c.Browser.TimeoutSeconds) * time.Second
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
