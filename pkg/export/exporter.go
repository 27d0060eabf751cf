package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/xuri/excelize/v2"

	"github.com/lirany1/pickles-explorer/pkg/analytics"
	"github.com/lirany1/pickles-explorer/pkg/config"
	"github.com/lirany1/pickles-explorer/pkg/report"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Output file names per format
const (
	JSONFile = "report.json"
	CSVFile  = "scenarios.csv"
	XLSXFile = "features.xlsx"
)

// Exporter handles exporting views to various formats
type Exporter struct {
	config *config.Config
}

// NewExporter creates a new exporter
func NewExporter(cfg *config.Config) *Exporter {
	return &Exporter{config: cfg}
}

// Export writes view to outputDir in format and returns the written path
func (e *Exporter) Export(view *report.View, outputDir, format string) (string, error) {
	switch strings.ToLower(format) {
	case "json":
		return e.exportJSON(view, outputDir)
	case "csv":
		return e.exportCSV(view, outputDir)
	case "xlsx":
		return e.exportXLSX(view, outputDir)
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
}

type jsonExport struct {
	Summary   *analytics.Summary    `json:"summary"`
	Scenarios []report.ScenarioItem `json:"scenarios"`
	Features  []report.FeatureItem  `json:"features"`
}

func (e *Exporter) exportJSON(view *report.View, outputDir string) (string, error) {
	data, err := json.MarshalIndent(jsonExport{
		Summary:   view.Summary,
		Scenarios: view.ScenarioItems(),
		Features:  view.FeatureItems(),
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	path := filepath.Join(outputDir, JSONFile)
	return path, os.WriteFile(path, data, 0644)
}

// exampleCount is the number of data rows in the primary examples table
func exampleCount(item report.ScenarioItem) int {
	if item.Examples == nil {
		return 0
	}
	return len(item.Examples.DataRows)
}

func scenarioRecord(item report.ScenarioItem) []string {
	return []string{
		item.Feature,
		item.Folder,
		item.Name,
		strings.Join(item.Tags, " "),
		strings.Join(item.InheritedTags, " "),
		strconv.Itoa(len(item.Steps)),
		strconv.Itoa(exampleCount(item)),
	}
}

var scenarioHeader = []string{"Feature", "Folder", "Scenario", "Tags", "Inherited Tags", "Steps", "Examples"}

func (e *Exporter) exportCSV(view *report.View, outputDir string) (string, error) {
	path := filepath.Join(outputDir, CSVFile)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(scenarioHeader); err != nil {
		return "", err
	}
	for _, item := range view.ScenarioItems() {
		if err := w.Write(scenarioRecord(item)); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write csv: %w", err)
	}
	return path, f.Close()
}

func (e *Exporter) exportXLSX(view *report.View, outputDir string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Scenarios"); err != nil {
		return "", err
	}
	rows := [][]interface{}{toRow(scenarioHeader)}
	for _, item := range view.ScenarioItems() {
		row := toRow(scenarioRecord(item)[:5])
		row = append(row, len(item.Steps), exampleCount(item))
		rows = append(rows, row)
	}
	if err := writeSheet(f, "Scenarios", rows); err != nil {
		return "", err
	}

	if _, err := f.NewSheet("Features"); err != nil {
		return "", err
	}
	rows = [][]interface{}{{"Feature", "Folder", "Tags", "Scenarios", "Steps"}}
	for _, item := range view.FeatureItems() {
		rows = append(rows, []interface{}{item.Name, item.Folder, strings.Join(item.Tags, " "), item.Scenarios, item.Steps})
	}
	if err := writeSheet(f, "Features", rows); err != nil {
		return "", err
	}

	if _, err := f.NewSheet("Tags"); err != nil {
		return "", err
	}
	rows = [][]interface{}{{"Tag", "Count", "Percent"}}
	for _, stat := range view.Summary.Tags {
		var percent interface{} = ""
		if stat.Percent != nil {
			percent = *stat.Percent
		}
		rows = append(rows, []interface{}{stat.Tag, stat.Count, percent})
	}
	if err := writeSheet(f, "Tags", rows); err != nil {
		return "", err
	}

	path := filepath.Join(outputDir, XLSXFile)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return path, nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func toRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
