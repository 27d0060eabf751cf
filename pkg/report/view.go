// Package report assembles the derived views of a document that every
// presentation (CLI, server, static dashboard, exports) shows.
package report

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/lirany1/pickles-explorer/pkg/analytics"
	"github.com/lirany1/pickles-explorer/pkg/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Query selects and orders the table rows of a view
type Query struct {
	Search       string
	Tag          string
	ScenarioSort string
	ScenarioDesc bool
	FeatureSort  string
	FeatureDesc  bool
}

// DefaultQuery sorts scenarios and features by their count columns, largest
// first, like the dashboard tables
func DefaultQuery() Query {
	return Query{
		ScenarioSort: analytics.ScenarioSortSteps,
		ScenarioDesc: true,
		FeatureSort:  analytics.FeatureSortScenarios,
		FeatureDesc:  true,
	}
}

// View is a document together with everything derived from it
type View struct {
	Document  *models.Document
	Summary   *analytics.Summary
	Scenarios []analytics.ScenarioRow
	Features  []analytics.FeatureRow
	Query     Query
}

// Build summarizes doc and produces the filtered, sorted tables
func Build(engine *analytics.Engine, doc *models.Document, source string, q Query) (*View, error) {
	summary, err := engine.Summarize(doc, source)
	if err != nil {
		return nil, err
	}

	scenarios, err := analytics.FlattenScenarios(doc, q.Search)
	if err != nil {
		return nil, err
	}
	scenarios = analytics.FilterScenariosByTag(scenarios, q.Tag)
	if q.ScenarioSort != "" {
		if err := analytics.SortScenarios(scenarios, q.ScenarioSort, q.ScenarioDesc); err != nil {
			return nil, err
		}
	}

	features, err := analytics.FlattenFeatures(doc)
	if err != nil {
		return nil, err
	}
	features = analytics.FilterFeaturesByTag(features, q.Tag)
	if q.FeatureSort != "" {
		if err := analytics.SortFeatures(features, q.FeatureSort, q.FeatureDesc); err != nil {
			return nil, err
		}
	}

	return &View{
		Document:  doc,
		Summary:   summary,
		Scenarios: scenarios,
		Features:  features,
		Query:     q,
	}, nil
}

// PrettyJSON renders doc with two-space indentation
func PrettyJSON(doc *models.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

// ScenarioItem is the flat, API friendly form of a scenario row
type ScenarioItem struct {
	Feature       string                `json:"feature"`
	Folder        string                `json:"folder"`
	Name          string                `json:"name"`
	Tags          []string              `json:"tags"`
	InheritedTags []string              `json:"inheritedTags"`
	Steps         []models.Step         `json:"steps"`
	Examples      *models.TableArgument `json:"examples,omitempty"`
}

// FeatureItem is the flat, API friendly form of a feature row
type FeatureItem struct {
	Name      string   `json:"name"`
	Folder    string   `json:"folder"`
	Tags      []string `json:"tags"`
	Scenarios int      `json:"scenarios"`
	Steps     int      `json:"steps"`
}

// ScenarioItems flattens the scenario rows without back references
func (v *View) ScenarioItems() []ScenarioItem {
	items := make([]ScenarioItem, 0, len(v.Scenarios))
	for _, row := range v.Scenarios {
		item := ScenarioItem{
			Feature:       row.Parent.Feature.Name,
			Folder:        row.Parent.RelativeFolder,
			Name:          row.Name,
			Tags:          row.Tags,
			InheritedTags: row.InheritedTags(),
			Steps:         row.Steps,
		}
		if table, ok := row.PrimaryExamples(); ok {
			item.Examples = table
		}
		items = append(items, item)
	}
	return items
}

// FeatureItems flattens the feature rows
func (v *View) FeatureItems() []FeatureItem {
	items := make([]FeatureItem, 0, len(v.Features))
	for _, row := range v.Features {
		items = append(items, FeatureItem{
			Name:      row.Name,
			Folder:    row.RelativeFolder,
			Tags:      row.Feature.Tags,
			Scenarios: row.Feature.ScenarioCount(),
			Steps:     row.Steps,
		})
	}
	return items
}
