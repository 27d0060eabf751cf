package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lirany1/pickles-explorer/pkg/config"
	"github.com/lirany1/pickles-explorer/pkg/logger"
	"github.com/lirany1/pickles-explorer/pkg/plugin"
)

var (
	version = "1.0.0"
	commit  = "dev"
	date    = "unknown"
)

// pluginActionEnv is set by gauge when it launches the reporter
const pluginActionEnv = "pickles-explorer_action"

func main() {
	if os.Getenv(pluginActionEnv) == "execution" {
		runAsGaugePlugin()
		return
	}

	if err := newRootCmd().Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "pickles-explorer",
		Short: "Explore Pickles feature documentation",
		Long: `Pickles Explorer loads a pickledFeatures.json document and shows what the
feature suite contains: counts, tag coverage, scenarios and features.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Path to configuration file")
	flags.StringVarP(&opts.url, "url", "u", "", "URL of the pickledFeatures.json document")
	flags.StringVarP(&opts.file, "file", "f", "", "Local pickledFeatures.json file")
	flags.StringVar(&opts.gaugeFile, "gauge", "", "Saved gauge suite result (protobuf)")
	flags.BoolVar(&opts.offline, "offline", false, "Use the last cached document instead of fetching")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "Directory holding the cache and history database")

	rootCmd.AddCommand(
		newSummaryCmd(opts),
		newScenariosCmd(opts),
		newFeaturesCmd(opts),
		newShowCmd(opts),
		newJSONCmd(opts),
		newGenerateCmd(opts),
		newServeCmd(opts),
		newHistoryCmd(opts),
		newInitCmd(opts),
		&cobra.Command{
			Use:   "plugin",
			Short: "Run as Gauge plugin",
			Long:  "Start the plugin in Gauge plugin mode (used internally by Gauge).",
			// the reporter loads its own configuration
			PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
			Run:               func(cmd *cobra.Command, args []string) { runAsGaugePlugin() },
		},
	)

	return rootCmd
}

func runAsGaugePlugin() {
	logger.Info("Starting Pickles Explorer plugin")

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	if err := plugin.NewPlugin(cfg).Start(); err != nil {
		logger.Fatalf("Failed to start plugin: %v", err)
	}
}
