package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mmcdole/neurostream/internal/domain"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	UI      UIConfig      `mapstructure:"ui"`
	Feed    FeedConfig    `mapstructure:"feed"`
	Reel    ReelConfig    `mapstructure:"reel"`
	Player  PlayerConfig  `mapstructure:"player"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Breaker BreakerConfig `mapstructure:"breaker"`
	Trailer TrailerConfig `mapstructure:"trailer"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds the recommendation backend location
type ServerConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	DefaultCategory string `mapstructure:"default_category"` // "movies" or "games"
	DefaultView     string `mapstructure:"default_view"`     // "grid" or "reel"
	GridColumns     int    `mapstructure:"grid_columns"`     // 0 = fit to width
}

// FeedConfig tunes infinite scrolling
type FeedConfig struct {
	PrefetchThreshold int `mapstructure:"prefetch_threshold"` // rows (grid) or items (reel) from the end
}

// ReelConfig holds reel mode behaviour
type ReelConfig struct {
	Autoplay bool `mapstructure:"autoplay"`
}

// PlayerConfig holds trailer player configuration
type PlayerConfig struct {
	Command string   `mapstructure:"command"` // empty = auto-detect
	Args    []string `mapstructure:"args"`
}

// CacheConfig holds the lookup cache configuration
type CacheConfig struct {
	Dir string        `mapstructure:"dir"` // empty = memory only
	TTL time.Duration `mapstructure:"ttl"`
}

// BreakerConfig holds circuit breaker configuration for the API client
type BreakerConfig struct {
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// TrailerConfig limits trailer lookups
type TrailerConfig struct {
	Rate  float64 `mapstructure:"rate"` // lookups per second
	Burst int     `mapstructure:"burst"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:     "http://127.0.0.1:5000",
			Timeout: 30 * time.Second,
		},
		UI: UIConfig{
			DefaultCategory: string(domain.CategoryMovies),
			DefaultView:     "grid",
			GridColumns:     0,
		},
		Feed: FeedConfig{
			PrefetchThreshold: 2,
		},
		Reel: ReelConfig{
			Autoplay: false,
		},
		Player: PlayerConfig{
			Command: "",
			Args:    []string{},
		},
		Cache: CacheConfig{
			Dir: "",
			TTL: 24 * time.Hour,
		},
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			Timeout:          30 * time.Second,
		},
		Trailer: TrailerConfig{
			Rate:  2,
			Burst: 4,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "neurostream", "neurostream.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "neurostream", "neurostream.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "neurostream")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "neurostream")
	}
}

// defaultCachePath returns the cache directory used when cache.dir is "default"
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "neurostream", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "neurostream", "cache")
	}
}

// setDefaults registers every key so environment overrides reach Unmarshal
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.url", cfg.Server.URL)
	v.SetDefault("server.timeout", cfg.Server.Timeout)
	v.SetDefault("ui.default_category", cfg.UI.DefaultCategory)
	v.SetDefault("ui.default_view", cfg.UI.DefaultView)
	v.SetDefault("ui.grid_columns", cfg.UI.GridColumns)
	v.SetDefault("feed.prefetch_threshold", cfg.Feed.PrefetchThreshold)
	v.SetDefault("reel.autoplay", cfg.Reel.Autoplay)
	v.SetDefault("player.command", cfg.Player.Command)
	v.SetDefault("player.args", cfg.Player.Args)
	v.SetDefault("cache.dir", cfg.Cache.Dir)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("breaker.failure_threshold", cfg.Breaker.FailureThreshold)
	v.SetDefault("breaker.timeout", cfg.Breaker.Timeout)
	v.SetDefault("trailer.rate", cfg.Trailer.Rate)
	v.SetDefault("trailer.burst", cfg.Trailer.Burst)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// LoadConfig loads configuration from file and environment. Extra search
// paths are tried before the default config directory.
func LoadConfig(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(defaultConfigPath())
	v.AddConfigPath(".")

	// Environment variable overrides, e.g. NEUROSTREAM_SERVER_URL
	v.SetEnvPrefix("NEUROSTREAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the client cannot run with
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url must be set")
	}
	if _, err := domain.ParseCategory(c.UI.DefaultCategory); err != nil {
		return fmt.Errorf("ui.default_category: %w", err)
	}
	switch c.UI.DefaultView {
	case "grid", "reel":
	default:
		return fmt.Errorf("ui.default_view must be grid or reel, got %q", c.UI.DefaultView)
	}
	if c.Feed.PrefetchThreshold < 0 {
		return fmt.Errorf("feed.prefetch_threshold must not be negative")
	}
	if c.Trailer.Rate <= 0 || c.Trailer.Burst <= 0 {
		return fmt.Errorf("trailer.rate and trailer.burst must be positive")
	}
	return nil
}

// CacheDir resolves cache.dir. "default" maps to the per-OS cache location.
func (c *Config) CacheDir() string {
	if c.Cache.Dir == "default" {
		return defaultCachePath()
	}
	return c.Cache.Dir
}

// SaveConfig writes the configuration to config.yaml in dir, or the default
// config directory when dir is empty
func SaveConfig(cfg *Config, dir string) (string, error) {
	if dir == "" {
		dir = defaultConfigPath()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	v := viper.New()
	v.Set("server.url", cfg.Server.URL)
	v.Set("server.timeout", cfg.Server.Timeout.String())
	v.Set("ui.default_category", cfg.UI.DefaultCategory)
	v.Set("ui.default_view", cfg.UI.DefaultView)
	v.Set("ui.grid_columns", cfg.UI.GridColumns)
	v.Set("feed.prefetch_threshold", cfg.Feed.PrefetchThreshold)
	v.Set("reel.autoplay", cfg.Reel.Autoplay)
	v.Set("player.command", cfg.Player.Command)
	v.Set("player.args", cfg.Player.Args)
	v.Set("cache.dir", cfg.Cache.Dir)
	v.Set("cache.ttl", cfg.Cache.TTL.String())
	v.Set("breaker.failure_threshold", cfg.Breaker.FailureThreshold)
	v.Set("breaker.timeout", cfg.Breaker.Timeout.String())
	v.Set("trailer.rate", cfg.Trailer.Rate)
	v.Set("trailer.burst", cfg.Trailer.Burst)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return configFile, nil
}

// ClearCache removes the on-disk lookup cache
func ClearCache(cfg *Config) error {
	dir := cfg.CacheDir()
	if dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
