// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Network() NetworkConfig
	Locale() LocaleConfig
	Database() DatabaseConfig
	Metrics() MetricsConfig
	Modes() ModesConfig

	// Browser Setters
	SetBrowserHeadless(bool)

	// Network Setters
	SetNetworkNavigationTimeout(d time.Duration)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	BrowserCfg  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	NetworkCfg  NetworkConfig  `mapstructure:"network" yaml:"network"`
	LocaleCfg   LocaleConfig   `mapstructure:"locale" yaml:"locale"`
	DatabaseCfg DatabaseConfig `mapstructure:"database" yaml:"database"`
	MetricsCfg  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
	ModesCfg    ModesConfig    `mapstructure:"modes" yaml:"modes"`
}

var _ Interface = (*Config)(nil)

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig   { return c.BrowserCfg }
func (c *Config) Network() NetworkConfig   { return c.NetworkCfg }
func (c *Config) Locale() LocaleConfig     { return c.LocaleCfg }
func (c *Config) Database() DatabaseConfig { return c.DatabaseCfg }
func (c *Config) Metrics() MetricsConfig   { return c.MetricsCfg }
func (c *Config) Modes() ModesConfig       { return c.ModesCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetBrowserHeadless(b bool) { c.BrowserCfg.Headless = b }
func (c *Config) SetNetworkNavigationTimeout(d time.Duration) {
	c.NetworkCfg.NavigationTimeout = d
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
	// Diagnostics toggles the "read the docs" and knowledge-base hint lines
	// emitted after a failed navigation.
	Diagnostics bool   `mapstructure:"diagnostics" yaml:"diagnostics"`
	DocsURL     string `mapstructure:"docs_url" yaml:"docs_url"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the headless browser instance.
type BrowserConfig struct {
	Headless    bool     `mapstructure:"headless" yaml:"headless"`
	DisableGPU  bool     `mapstructure:"disable_gpu" yaml:"disable_gpu"`
	Args        []string `mapstructure:"args" yaml:"args"`
	UserDataDir string   `mapstructure:"user_data_dir" yaml:"user_data_dir"`
	UserAgent   string   `mapstructure:"user_agent" yaml:"user_agent"`
	Debug       bool     `mapstructure:"debug" yaml:"debug"`
}

// NetworkConfig tunes the network behavior of the browser session.
type NetworkConfig struct {
	NavigationTimeout time.Duration     `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	PostLoadWait      time.Duration     `mapstructure:"post_load_wait" yaml:"post_load_wait"`
	Headers           map[string]string `mapstructure:"headers" yaml:"headers"`
}

// LocaleConfig selects the language used for operator-facing log messages.
type LocaleConfig struct {
	Language string `mapstructure:"language" yaml:"language"`
}

// DatabaseConfig holds the database connection details for the like journal.
// An empty URL selects the in-memory journal.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// MetricsConfig controls the Prometheus endpoint served while a mode runs.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Address string `mapstructure:"address" yaml:"address"`
}

// ModesConfig groups the per-strategy settings.
type ModesConfig struct {
	Default         string                `mapstructure:"default" yaml:"default"`
	LikeFriendsFeed LikeFriendsFeedConfig `mapstructure:"likemode_friendsfeed" yaml:"likemode_friendsfeed"`
}

// LikeFriendsFeedConfig tunes the friends-feed like strategy.
type LikeFriendsFeedConfig struct {
	MaxLikes              int           `mapstructure:"max_likes" yaml:"max_likes"`
	LikesPerHour          float64       `mapstructure:"likes_per_hour" yaml:"likes_per_hour"`
	Burst                 int           `mapstructure:"burst" yaml:"burst"`
	LikeRatio             float64       `mapstructure:"like_ratio" yaml:"like_ratio"`
	CyclePause            time.Duration `mapstructure:"cycle_pause" yaml:"cycle_pause"`
	MaxNavigationFailures int           `mapstructure:"max_navigation_failures" yaml:"max_navigation_failures"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "socialbot")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")
	v.SetDefault("logger.diagnostics", true)
	v.SetDefault("logger.docs_url", "https://docs.socialbot.dev")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_gpu", true)
	v.SetDefault("browser.user_data_dir", "")
	v.SetDefault("browser.user_agent", "")
	v.SetDefault("browser.debug", false)

	// -- Network --
	v.SetDefault("network.navigation_timeout", "60s")
	v.SetDefault("network.post_load_wait", "1500ms")

	// -- Locale --
	v.SetDefault("locale.language", "en")

	// -- Database --
	v.SetDefault("database.url", "")

	// -- Metrics --
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", "127.0.0.1:9464")

	// -- Modes --
	v.SetDefault("modes.default", "Likemode_friendsfeed_realistic")
	v.SetDefault("modes.likemode_friendsfeed.max_likes", 50)
	v.SetDefault("modes.likemode_friendsfeed.likes_per_hour", 30.0)
	v.SetDefault("modes.likemode_friendsfeed.burst", 1)
	v.SetDefault("modes.likemode_friendsfeed.like_ratio", 0.6)
	v.SetDefault("modes.likemode_friendsfeed.cycle_pause", "45s")
	v.SetDefault("modes.likemode_friendsfeed.max_navigation_failures", 3)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data
	v.BindEnv("database.url", "SOCIALBOT_DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// expandPaths resolves a leading "~" in file system paths.
func (c *Config) expandPaths() error {
	var err error
	if c.BrowserCfg.UserDataDir, err = homedir.Expand(c.BrowserCfg.UserDataDir); err != nil {
		return fmt.Errorf("browser.user_data_dir: %w", err)
	}
	if c.LoggerCfg.LogFile, err = homedir.Expand(c.LoggerCfg.LogFile); err != nil {
		return fmt.Errorf("logger.log_file: %w", err)
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	switch c.LoggerCfg.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be one of console, json (got %q)", c.LoggerCfg.Format)
	}
	if c.NetworkCfg.NavigationTimeout <= 0 {
		return fmt.Errorf("network.navigation_timeout must be a positive duration")
	}
	if strings.TrimSpace(c.LocaleCfg.Language) == "" {
		return fmt.Errorf("locale.language is required")
	}
	if c.MetricsCfg.Enabled && c.MetricsCfg.Address == "" {
		return fmt.Errorf("metrics.address is required when metrics are enabled")
	}
	if err := c.ModesCfg.LikeFriendsFeed.Validate(); err != nil {
		return fmt.Errorf("modes.likemode_friendsfeed configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the friends-feed strategy settings.
func (l *LikeFriendsFeedConfig) Validate() error {
	if l.MaxLikes <= 0 {
		return fmt.Errorf("max_likes must be a positive integer")
	}
	if l.LikesPerHour <= 0 {
		return fmt.Errorf("likes_per_hour must be positive")
	}
	if l.Burst <= 0 {
		return fmt.Errorf("burst must be a positive integer")
	}
	if l.LikeRatio <= 0 || l.LikeRatio > 1 {
		return fmt.Errorf("like_ratio must be in (0, 1]")
	}
	if l.CyclePause < 0 {
		return fmt.Errorf("cycle_pause must not be negative")
	}
	if l.MaxNavigationFailures <= 0 {
		return fmt.Errorf("max_navigation_failures must be a positive integer")
	}
	return nil
}
