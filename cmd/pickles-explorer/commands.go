package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lirany1/pickles-explorer/pkg/analytics"
	"github.com/lirany1/pickles-explorer/pkg/generator"
	"github.com/lirany1/pickles-explorer/pkg/logger"
	"github.com/lirany1/pickles-explorer/pkg/models"
	"github.com/lirany1/pickles-explorer/pkg/report"
	"github.com/lirany1/pickles-explorer/pkg/server"
)

func newSummaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show feature, scenario, step and tag counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, source, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			summary, err := opts.engine().Summarize(doc, source)
			if err != nil {
				return err
			}
			renderSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

func newScenariosCmd(opts *options) *cobra.Command {
	var search, tag, sortKey, order string

	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List scenarios with their parent feature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := descending(sortKey, order)
			if err != nil {
				return err
			}
			doc, source, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			view, err := report.Build(opts.engine(), doc, source, report.Query{
				Search:       search,
				Tag:          tag,
				ScenarioSort: sortKey,
				ScenarioDesc: desc,
			})
			if err != nil {
				return err
			}
			renderScenarios(cmd.OutOrStdout(), view.Scenarios)
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Keep scenarios whose name or feature name contains this text (case-sensitive)")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Keep scenarios carrying this tag, own or inherited")
	cmd.Flags().StringVar(&sortKey, "sort", analytics.ScenarioSortSteps, "Sort by parent, name or steps")
	cmd.Flags().StringVar(&order, "order", "", "asc or desc (steps default to desc)")
	return cmd
}

func newFeaturesCmd(opts *options) *cobra.Command {
	var tag, sortKey, order string

	cmd := &cobra.Command{
		Use:   "features",
		Short: "List features with scenario and step counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := descending(sortKey, order)
			if err != nil {
				return err
			}
			doc, source, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			view, err := report.Build(opts.engine(), doc, source, report.Query{
				Tag:         tag,
				FeatureSort: sortKey,
				FeatureDesc: desc,
			})
			if err != nil {
				return err
			}
			renderFeatures(cmd.OutOrStdout(), view.Features)
			return nil
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Keep features carrying this tag")
	cmd.Flags().StringVar(&sortKey, "sort", analytics.FeatureSortScenarios, "Sort by name, folder, scenarios or steps")
	cmd.Flags().StringVar(&order, "order", "", "asc or desc (counts default to desc)")
	return cmd
}

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <scenario name>",
		Short: "Show the steps and examples of a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			row, ok, err := analytics.FindScenario(doc, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("scenario %q not found", args[0])
			}
			renderScenario(cmd.OutOrStdout(), row)
			return nil
		},
	}
}

func newJSONCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "json",
		Short: "Print the document as indented JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			data, err := report.PrettyJSON(doc)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func newGenerateCmd(opts *options) *cobra.Command {
	var outputDir, theme string
	var formats []string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a static dashboard",
		Long:  "Generate index.html with the stats, tags, scenarios and features of the document, plus optional exports.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("formats") {
				opts.cfg.ExportFormats = formats
			}
			if cmd.Flags().Changed("theme") {
				opts.cfg.ThemePath = theme
			}

			gen := generator.NewGenerator(opts.cfg, opts.db)
			logger.Infof("Output: %s", outputDir)

			if gaugeFile := opts.cfg.GaugeFile; gaugeFile != "" {
				if err := gen.GenerateFromGauge(gaugeFile, filepath.Dir(gaugeFile), outputDir); err != nil {
					return fmt.Errorf("failed to generate report: %w", err)
				}
				return nil
			}

			doc, source, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			logger.Infof("Source: %s", source)

			if err := gen.Generate(doc, source, outputDir); err != nil {
				return fmt.Errorf("failed to generate report: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory for the dashboard (required)")
	cmd.Flags().StringSliceVar(&formats, "formats", []string{"html"}, "Export formats (html, json, csv, xlsx)")
	cmd.Flags().StringVarP(&theme, "theme", "t", "default", "Theme whose assets are copied")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newServeCmd(opts *options) *cobra.Command {
	var host string
	var port int
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start live dashboard server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				opts.cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				opts.cfg.Port = port
			}
			if cmd.Flags().Changed("watch") {
				opts.cfg.Watch = watch
			}

			doc, source, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}

			srv := server.NewServer(opts.cfg, opts.engine())
			srv.SetDocument(doc, source)

			ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if opts.cfg.Watch {
				if opts.cfg.ReportFile == "" {
					logger.Warn("Watch mode needs a local file (--file); not watching")
				} else {
					path := opts.cfg.ReportFile
					go func() {
						if err := srv.Watch(ctx, path, func() (*models.Document, error) {
							return opts.loader().LoadFile(path)
						}); err != nil {
							logger.Errorf("Watch stopped: %v", err)
						}
					}()
				}
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVarP(&host, "host", "H", "localhost", "Host to bind server to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to run server on")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload the local file when it changes")
	return cmd
}

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded snapshots and the scenario trend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := opts.engine()
			if !engine.HasHistory() {
				return fmt.Errorf("history is disabled")
			}
			if !cmd.Flags().Changed("limit") {
				limit = opts.cfg.HistoryLimit
			}
			if limit < 1 {
				return fmt.Errorf("limit must be at least 1, got %d", limit)
			}

			trend, err := engine.Trend(limit)
			if err != nil {
				return err
			}
			renderHistory(cmd.OutOrStdout(), trend)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of snapshots to show")
	return cmd
}

func newInitCmd(opts *options) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.cfg.Save(path); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "output", "o", "pickles-explorer.yml", "Configuration file to write")
	return cmd
}

// descending resolves the sort direction; an empty order uses the key default
func descending(key, order string) (bool, error) {
	switch order {
	case "":
		return analytics.DefaultDescending(key), nil
	case "asc":
		return false, nil
	case "desc":
		return true, nil
	}
	return false, fmt.Errorf("order must be asc or desc, got %q", order)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
