package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	// DefaultReportURL is where the published Pickles report lives
	DefaultReportURL = "https://pickled-saasquatch.surge.sh/pickledFeatures.json"

	// DefaultCacheKey is the key the raw report JSON is cached under
	DefaultCacheKey = "features"

	// DefaultCoverageTag marks scenarios counted as automated
	DefaultCoverageTag = "@automated"
)

// Config holds the configuration for loading and presenting a report
type Config struct {
	// Sources
	ReportURL  string        `mapstructure:"report_url"`
	ReportFile string        `mapstructure:"report_file"`
	GaugeFile  string        `mapstructure:"gauge_file"`
	Timeout    time.Duration `mapstructure:"timeout"`
	CacheKey   string        `mapstructure:"cache_key"`
	DataDir    string        `mapstructure:"data_dir"`

	// Presentation
	ProjectName   string   `mapstructure:"project_name"`
	CoverageTag   string   `mapstructure:"coverage_tag"`
	ThemePath     string   `mapstructure:"theme_path"`
	ExportFormats []string `mapstructure:"export_formats"`

	// History
	HistoryEnabled bool `mapstructure:"history_enabled"`
	HistoryLimit   int  `mapstructure:"history_limit"`
	RetentionDays  int  `mapstructure:"retention_days"`

	// Server
	Host  string `mapstructure:"host"`
	Port  int    `mapstructure:"port"`
	Watch bool   `mapstructure:"watch"`

	LogLevel string `mapstructure:"log_level"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		ReportURL:      DefaultReportURL,
		Timeout:        30 * time.Second,
		CacheKey:       DefaultCacheKey,
		DataDir:        ".",
		ProjectName:    getProjectName(),
		CoverageTag:    DefaultCoverageTag,
		ThemePath:      "default",
		ExportFormats:  []string{"html"},
		HistoryEnabled: true,
		HistoryLimit:   10,
		RetentionDays:  90,
		Host:           "localhost",
		Port:           8080,
		LogLevel:       "info",
	}
}

// LoadConfig loads configuration from the first config file found in the
// working directory, then applies environment overrides
func LoadConfig() (*Config, error) {
	cfg := NewConfig()

	configPaths := []string{
		"pickles-explorer.yml",
		"pickles-explorer.yaml",
		"pickles-explorer.json",
		".pickles/explorer.yml",
	}

	for _, path := range configPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		break
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file (YAML, JSON, or TOML)
func (c *Config) LoadFromFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(c)
}

// LoadFromEnv applies PICKLES_* environment overrides
func (c *Config) LoadFromEnv() error {
	if url := os.Getenv("PICKLES_URL"); url != "" {
		c.ReportURL = url
	}

	if file := os.Getenv("PICKLES_FILE"); file != "" {
		c.ReportFile = file
	}

	if dir := os.Getenv("PICKLES_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}

	if tag := os.Getenv("PICKLES_COVERAGE_TAG"); tag != "" {
		c.CoverageTag = tag
	}

	if level := os.Getenv("PICKLES_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}

	if timeout := os.Getenv("PICKLES_TIMEOUT"); timeout != "" {
		d, err := cast.ToDurationE(timeout)
		if err != nil {
			return fmt.Errorf("invalid PICKLES_TIMEOUT %q: %w", timeout, err)
		}
		c.Timeout = d
	}

	if history := os.Getenv("PICKLES_HISTORY"); history != "" {
		enabled, err := cast.ToBoolE(history)
		if err != nil {
			return fmt.Errorf("invalid PICKLES_HISTORY %q: %w", history, err)
		}
		c.HistoryEnabled = enabled
	}

	return nil
}

// Save writes the source and presentation settings to a file
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigFile(path)

	v.Set("report_url", c.ReportURL)
	v.Set("report_file", c.ReportFile)
	v.Set("timeout", c.Timeout.String())
	v.Set("data_dir", c.DataDir)
	v.Set("coverage_tag", c.CoverageTag)
	v.Set("theme_path", c.ThemePath)
	v.Set("export_formats", c.ExportFormats)
	v.Set("history_enabled", c.HistoryEnabled)

	return v.WriteConfig()
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.ReportFile == "" && c.GaugeFile == "" && strings.TrimSpace(c.ReportURL) == "" {
		return fmt.Errorf("no report source: set a report URL or a report file")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.CacheKey == "" {
		return fmt.Errorf("cache key must not be empty")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("history limit must be at least 1, got %d", c.HistoryLimit)
	}
	return nil
}

// getProjectName tries to get project name from current directory
func getProjectName() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "Pickles Report"
	}
	return filepath.Base(cwd)
}
