package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lirany1/pickles-explorer/pkg/analytics"
	"github.com/lirany1/pickles-explorer/pkg/config"
	"github.com/lirany1/pickles-explorer/pkg/export"
	"github.com/lirany1/pickles-explorer/pkg/gauge"
	"github.com/lirany1/pickles-explorer/pkg/logger"
	"github.com/lirany1/pickles-explorer/pkg/models"
	"github.com/lirany1/pickles-explorer/pkg/renderer"
	"github.com/lirany1/pickles-explorer/pkg/report"
	"github.com/lirany1/pickles-explorer/pkg/storage"
	"github.com/lirany1/pickles-explorer/pkg/themes"
)

// IndexFile is the dashboard page written into the output directory
const IndexFile = "index.html"

// Generator writes the static dashboard and its exports
type Generator struct {
	config    *config.Config
	analytics *analytics.Engine
	renderer  *renderer.Renderer
	exporter  *export.Exporter
	themes    *themes.Manager
}

// NewGenerator creates a new report generator; db may be nil to skip history
func NewGenerator(cfg *config.Config, db *storage.Database) *Generator {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Generator{
		config:    cfg,
		analytics: analytics.NewEngine(cfg, db),
		renderer:  renderer.NewRenderer(cfg),
		exporter:  export.NewExporter(cfg),
		themes:    themes.NewManager(cfg),
	}
}

// GenerateFromGauge converts a saved gauge suite result and generates from it
func (g *Generator) GenerateFromGauge(inputFile, projectRoot, outputDir string) error {
	logger.Infof("Reading gauge results from %s", inputFile)

	result, err := gauge.ReadFile(inputFile)
	if err != nil {
		return err
	}

	return g.Generate(gauge.Convert(result, projectRoot), inputFile, outputDir)
}

// Generate writes the dashboard for doc into outputDir
func (g *Generator) Generate(doc *models.Document, source, outputDir string) error {
	startTime := time.Now()
	logger.Info("Starting report generation...")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	view, err := report.Build(g.analytics, doc, source, report.DefaultQuery())
	if err != nil {
		return err
	}

	if g.config.HistoryEnabled && g.analytics.HasHistory() {
		logger.Info("Recording snapshot...")
		if _, err := g.analytics.Record(view.Summary); err != nil {
			logger.Warnf("Failed to record snapshot: %v", err)
		}
		if err := g.analytics.Cleanup(); err != nil {
			logger.Warnf("Failed to clean up old snapshots: %v", err)
		}
	}

	logger.Info("Copying theme assets...")
	if _, err := g.themes.CopyAssets(g.config.ThemePath, outputDir); err != nil {
		return fmt.Errorf("failed to copy theme assets: %w", err)
	}

	logger.Info("Rendering HTML report...")
	if err := g.renderer.RenderIndex(view, filepath.Join(outputDir, IndexFile)); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	g.exportToFormats(view, outputDir)

	logger.Infof("Report generated in %v", time.Since(startTime))
	logger.Infof("Open: file://%s", filepath.Join(outputDir, IndexFile))

	return nil
}

func (g *Generator) exportToFormats(view *report.View, outputDir string) {
	for _, format := range g.config.ExportFormats {
		if format == "html" {
			continue
		}

		logger.Infof("Exporting to %s...", format)
		path, err := g.exporter.Export(view, outputDir, format)
		if err != nil {
			logger.Warnf("Failed to export to %s: %v", format, err)
			continue
		}
		logger.Debugf("Wrote %s", path)
	}
}
