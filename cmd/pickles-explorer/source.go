package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lirany1/pickles-explorer/pkg/analytics"
	"github.com/lirany1/pickles-explorer/pkg/cache"
	"github.com/lirany1/pickles-explorer/pkg/config"
	"github.com/lirany1/pickles-explorer/pkg/gauge"
	"github.com/lirany1/pickles-explorer/pkg/loader"
	"github.com/lirany1/pickles-explorer/pkg/logger"
	"github.com/lirany1/pickles-explorer/pkg/models"
	"github.com/lirany1/pickles-explorer/pkg/storage"
)

// options carries the persistent flags and what they resolve to
type options struct {
	configFile string
	url        string
	file       string
	gaugeFile  string
	offline    bool
	logLevel   string
	dataDir    string

	cfg *config.Config
	db  *storage.Database
}

// resolve loads the configuration, applies flag overrides and opens the
// history database when enabled
func (o *options) resolve(cmd *cobra.Command) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.ReportURL = o.url
	}
	if flags.Changed("file") {
		cfg.ReportFile = o.file
	}
	if flags.Changed("gauge") {
		cfg.GaugeFile = o.gaugeFile
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = o.dataDir
	}

	logger.SetLevel(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	o.cfg = cfg

	if cfg.HistoryEnabled {
		db, err := storage.NewDatabase(cfg.DataDir)
		if err != nil {
			logger.Warnf("History and persistent cache disabled: %v", err)
		} else {
			logger.Debugf("History database: %s", db.Path())
			o.db = db
		}
	}
	return nil
}

func (o *options) loadConfig() (*config.Config, error) {
	if o.configFile == "" {
		return config.LoadConfig()
	}

	cfg := config.NewConfig()
	if err := cfg.LoadFromFile(o.configFile); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *options) close() {
	if o.db == nil {
		return
	}
	if err := o.db.Close(); err != nil {
		logger.Warnf("Failed to close database: %v", err)
	}
	o.db = nil
}

// cache is the database when open, otherwise a process-local map
func (o *options) cache() cache.Cache {
	if o.db != nil {
		return o.db
	}
	return cache.NewMemory()
}

func (o *options) engine() *analytics.Engine {
	return analytics.NewEngine(o.cfg, o.db)
}

func (o *options) loader() *loader.Loader {
	return loader.NewFromConfig(o.cfg, o.cache())
}

// load fetches the document from the configured source. A gauge result wins
// over a local file, which wins over the URL.
func (o *options) load(ctx context.Context) (*models.Document, string, error) {
	switch {
	case o.cfg.GaugeFile != "":
		result, err := gauge.ReadFile(o.cfg.GaugeFile)
		if err != nil {
			return nil, "", err
		}
		doc := gauge.Convert(result, filepath.Dir(o.cfg.GaugeFile))
		return doc, o.cfg.GaugeFile, nil

	case o.cfg.ReportFile != "":
		doc, err := o.loader().LoadFile(o.cfg.ReportFile)
		return doc, o.cfg.ReportFile, err

	case o.offline:
		doc, err := o.loader().Cached()
		return doc, "cache:" + o.cfg.CacheKey, err

	default:
		l := o.loader()
		doc, err := l.Load(ctx)
		return doc, l.URL(), err
	}
}
