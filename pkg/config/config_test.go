package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, DefaultReportURL, cfg.ReportURL)
	assert.Equal(t, "features", cfg.CacheKey)
	assert.Equal(t, "@automated", cfg.CoverageTag)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pickles-explorer.yml")
	content := `report_url: https://example.test/pickledFeatures.json
timeout: 5s
coverage_tag: "@manual"
export_formats: [html, xlsx]
port: 9090
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "https://example.test/pickledFeatures.json", cfg.ReportURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "@manual", cfg.CoverageTag)
	assert.Equal(t, []string{"html", "xlsx"}, cfg.ExportFormats)
	assert.Equal(t, 9090, cfg.Port)
	// untouched keys keep their defaults
	assert.Equal(t, "features", cfg.CacheKey)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PICKLES_URL", "https://env.test/features.json")
	t.Setenv("PICKLES_TIMEOUT", "2s")
	t.Setenv("PICKLES_COVERAGE_TAG", "@ci")
	t.Setenv("PICKLES_HISTORY", "false")

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "https://env.test/features.json", cfg.ReportURL)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, "@ci", cfg.CoverageTag)
	assert.False(t, cfg.HistoryEnabled)
}

func TestLoadFromEnvInvalidTimeout(t *testing.T) {
	t.Setenv("PICKLES_TIMEOUT", "soon")

	cfg := NewConfig()
	assert.Error(t, cfg.LoadFromEnv())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "file without url", mutate: func(c *Config) { c.ReportURL = ""; c.ReportFile = "report.json" }},
		{name: "no source", mutate: func(c *Config) { c.ReportURL = "  " }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: true},
		{name: "empty cache key", mutate: func(c *Config) { c.CacheKey = "" }, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Port = 70000 }, wantErr: true},
		{name: "bad history limit", mutate: func(c *Config) { c.HistoryLimit = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")

	cfg := NewConfig()
	cfg.ReportURL = "https://saved.test/features.json"
	cfg.CoverageTag = "@saved"
	require.NoError(t, cfg.Save(path))

	loaded := NewConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, cfg.ReportURL, loaded.ReportURL)
	assert.Equal(t, cfg.CoverageTag, loaded.CoverageTag)
	assert.Equal(t, cfg.Timeout, loaded.Timeout)
}
