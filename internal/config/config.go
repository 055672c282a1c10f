package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const appName = "lazyexplorer"

// Config holds all application configuration
type Config struct {
	General     GeneralConfig     `mapstructure:"general"`
	UI          UIConfig          `mapstructure:"ui"`
	Performance PerformanceConfig `mapstructure:"performance"`
	History     HistoryConfig     `mapstructure:"history"`
	Log         LogConfig         `mapstructure:"log"`
	Export      ExportConfig      `mapstructure:"export"`
}

type GeneralConfig struct {
	ConfirmDestructiveOps bool `mapstructure:"confirm_destructive_ops"`
	AutoConnectLast       bool `mapstructure:"auto_connect_last"`
	PreviewLimit          int  `mapstructure:"preview_limit"`
}

type UIConfig struct {
	Theme           string `mapstructure:"theme"`
	MouseEnabled    bool   `mapstructure:"mouse_enabled"`
	PanelWidthRatio int    `mapstructure:"panel_width_ratio"`
}

// PerformanceConfig timeouts are in milliseconds
type PerformanceConfig struct {
	QueryTimeout         int `mapstructure:"query_timeout"`
	ConnectTimeout       int `mapstructure:"connect_timeout"`
	MaxConcurrentFetches int `mapstructure:"max_concurrent_fetches"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ExportConfig Format is csv or json
type ExportConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// QueryTimeoutDuration is the per-fetch timeout
func (p PerformanceConfig) QueryTimeoutDuration() time.Duration {
	return time.Duration(p.QueryTimeout) * time.Millisecond
}

// ConnectTimeoutDuration is the timeout for opening a connection
func (p PerformanceConfig) ConnectTimeoutDuration() time.Duration {
	return time.Duration(p.ConnectTimeout) * time.Millisecond
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		General: GeneralConfig{
			ConfirmDestructiveOps: true,
			AutoConnectLast:       false,
			PreviewLimit:          100,
		},
		UI: UIConfig{
			Theme:           "default",
			MouseEnabled:    true,
			PanelWidthRatio: 30,
		},
		Performance: PerformanceConfig{
			QueryTimeout:         30000,
			ConnectTimeout:       10000,
			MaxConcurrentFetches: 4,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Export: ExportConfig{
			Format: "csv",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := GetDefaults()
	v.SetDefault("general.confirm_destructive_ops", d.General.ConfirmDestructiveOps)
	v.SetDefault("general.auto_connect_last", d.General.AutoConnectLast)
	v.SetDefault("general.preview_limit", d.General.PreviewLimit)
	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.mouse_enabled", d.UI.MouseEnabled)
	v.SetDefault("ui.panel_width_ratio", d.UI.PanelWidthRatio)
	v.SetDefault("performance.query_timeout", d.Performance.QueryTimeout)
	v.SetDefault("performance.connect_timeout", d.Performance.ConnectTimeout)
	v.SetDefault("performance.max_concurrent_fetches", d.Performance.MaxConcurrentFetches)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("export.dir", d.Export.Dir)
	v.SetDefault("export.format", d.Export.Format)
}

// Load reads the configuration. An explicit file must exist; otherwise
// the usual locations are searched and a missing file is not an error.
// LAZYEXPLORER_* environment variables override file values.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LAZYEXPLORER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := GetConfigPath(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

// normalize replaces values that would break the explorer with defaults
func (c *Config) normalize() {
	d := GetDefaults()
	if c.General.PreviewLimit <= 0 {
		c.General.PreviewLimit = d.General.PreviewLimit
	}
	if c.UI.PanelWidthRatio <= 0 || c.UI.PanelWidthRatio >= 100 {
		c.UI.PanelWidthRatio = d.UI.PanelWidthRatio
	}
	if c.Performance.QueryTimeout <= 0 {
		c.Performance.QueryTimeout = d.Performance.QueryTimeout
	}
	if c.Performance.ConnectTimeout <= 0 {
		c.Performance.ConnectTimeout = d.Performance.ConnectTimeout
	}
	if c.Performance.MaxConcurrentFetches <= 0 {
		c.Performance.MaxConcurrentFetches = d.Performance.MaxConcurrentFetches
	}
	c.Export.Format = strings.ToLower(c.Export.Format)
	if c.Export.Format != "csv" && c.Export.Format != "json" {
		c.Export.Format = d.Export.Format
	}
}

// GetConfigPath returns the user config directory path, honoring
// XDG_CONFIG_HOME
func GetConfigPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName), nil
}

// HistoryPath is the preview history database location
func (c *Config) HistoryPath(configDir string) string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(configDir, "history.db")
}

// LogPath is the log file location
func (c *Config) LogPath(configDir string) string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(configDir, appName+".log")
}

// ExportDir is where preview exports are written
func (c *Config) ExportDir(configDir string) string {
	if c.Export.Dir != "" {
		return c.Export.Dir
	}
	return filepath.Join(configDir, "exports")
}
