package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lirany1/pickles-explorer/pkg/analytics"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func formatPercent(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *p)
}

func formatCoverage(c analytics.CoverageStat) string {
	percent := "-"
	if c.Percent != nil {
		percent = fmt.Sprintf("%d%%", *c.Percent)
	}
	return fmt.Sprintf("%d of %d scenarios %s (%s)", c.Count, c.Scenarios, c.Tag, percent)
}

func renderSummary(w io.Writer, s *analytics.Summary) {
	fmt.Fprintln(w, titleStyle.Render("Stats"))
	fmt.Fprintln(w, formatCoverage(s.Coverage))
	fmt.Fprintf(w, "%d features, %d scenarios and %d steps\n",
		s.Aggregates.FeatureCount, s.Aggregates.ScenarioCount, s.Aggregates.StepCount)
	fmt.Fprintln(w, mutedStyle.Render("source: "+s.Source))
	fmt.Fprintln(w)

	fmt.Fprintln(w, titleStyle.Render("Tags"))
	if len(s.Tags) == 0 {
		fmt.Fprintln(w, "No tags")
		return
	}
	t := newTable("Tag", "Scenarios", "Percent")
	for _, stat := range s.Tags {
		t.Row(stat.Tag, strconv.Itoa(stat.Count), formatPercent(stat.Percent))
	}
	fmt.Fprintln(w, t.String())
}

func renderScenarios(w io.Writer, rows []analytics.ScenarioRow) {
	t := newTable("Parent", "Name", "Tags", "Inherited", "Steps")
	for _, row := range rows {
		t.Row(
			row.Parent.Feature.Name,
			row.Name,
			strings.Join(row.Tags, " "),
			strings.Join(row.InheritedTags(), " "),
			strconv.Itoa(len(row.Steps)),
		)
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Scenarios (%d)", len(rows))))
	fmt.Fprintln(w, t.String())
}

func renderFeatures(w io.Writer, rows []analytics.FeatureRow) {
	t := newTable("Name", "Tags", "File", "Scenarios", "Steps")
	for _, row := range rows {
		t.Row(
			row.Name,
			strings.Join(row.Feature.Tags, ", "),
			row.RelativeFolder,
			strconv.Itoa(len(row.Children)),
			strconv.Itoa(row.Steps),
		)
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Features (%d)", len(rows))))
	fmt.Fprintln(w, t.String())
}

func renderScenario(w io.Writer, row analytics.ScenarioRow) {
	fmt.Fprintln(w, titleStyle.Render(row.Name))
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%s (%s)", row.Parent.Feature.Name, row.Parent.RelativeFolder)))
	if row.Description != "" {
		fmt.Fprintln(w, row.Description)
	}
	if tags := row.EffectiveTags(); len(tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(tags, " "))
	}
	fmt.Fprintln(w)

	if examples, ok := row.PrimaryExamples(); ok {
		t := newTable(examples.HeaderRow...)
		for _, data := range examples.DataRows {
			t.Row(data...)
		}
		fmt.Fprintln(w, t.String())
		fmt.Fprintln(w, mutedStyle.Render("Perform this test with each of the above entries"))
		fmt.Fprintln(w)
	}

	for _, step := range row.Steps {
		fmt.Fprintf(w, "  %s %s\n", step.Keyword, step.Name)
	}
}

func renderHistory(w io.Writer, trend *analytics.TrendData) {
	if len(trend.Snapshots) == 0 {
		fmt.Fprintln(w, "No snapshots recorded")
		return
	}

	t := newTable("Recorded", "Source", "Features", "Scenarios", "Steps")
	for _, s := range trend.Snapshots {
		t.Row(
			s.Timestamp.Local().Format("2006-01-02 15:04:05"),
			s.Source,
			strconv.Itoa(s.FeatureCount),
			strconv.Itoa(s.ScenarioCount),
			strconv.Itoa(s.StepCount),
		)
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("History (%d)", len(trend.Snapshots))))
	fmt.Fprintln(w, t.String())
	fmt.Fprintf(w, "Trend: %s (%+d scenarios)\n", trend.Direction, trend.ScenarioDelta)
}
