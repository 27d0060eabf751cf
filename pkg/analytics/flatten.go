package analytics

import (
	"strings"

	"github.com/lirany1/pickles-explorer/pkg/models"
)

// ScenarioRow is a scenario together with the feature it belongs to
type ScenarioRow struct {
	models.Scenario
	Parent *models.FeatureWrapper `json:"parent"`
}

// FeatureRow is a feature with its computed totals
type FeatureRow struct {
	models.FeatureWrapper
	Name     string            `json:"Name"`
	Steps    int               `json:"steps"`
	Children []models.Scenario `json:"children"`
}

func (r ScenarioRow) parentFeature() *models.Feature {
	if r.Parent == nil {
		return nil
	}
	return r.Parent.Feature
}

// EffectiveTags returns the row's own and inherited tags
func (r ScenarioRow) EffectiveTags() []string {
	return r.Scenario.EffectiveTags(r.parentFeature())
}

// InheritedTags returns the tags the row takes from its feature
func (r ScenarioRow) InheritedTags() []string {
	if feature := r.parentFeature(); feature != nil {
		return feature.Tags
	}
	return nil
}

// FlattenScenarios lists the scenarios of every feature in document order.
// A non-empty search keeps only scenarios whose name, or whose feature's
// name, contains it (case-sensitive). Malformed documents fail with a
// *models.ValidationError.
func FlattenScenarios(doc *models.Document, search string) ([]ScenarioRow, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	rows := make([]ScenarioRow, 0)
	for i := range doc.Features {
		parent := &doc.Features[i]
		for _, scenario := range parent.Feature.FeatureElements {
			if !matchesSearch(scenario, parent, search) {
				continue
			}
			rows = append(rows, ScenarioRow{Scenario: scenario, Parent: parent})
		}
	}
	return rows, nil
}

func matchesSearch(scenario models.Scenario, parent *models.FeatureWrapper, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(scenario.Name, search) || strings.Contains(parent.Feature.Name, search)
}

// FlattenFeatures lists every feature with its name, step total and scenarios
func FlattenFeatures(doc *models.Document) ([]FeatureRow, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	rows := make([]FeatureRow, 0, len(doc.Features))
	for _, wrapper := range doc.Features {
		rows = append(rows, FeatureRow{
			FeatureWrapper: wrapper,
			Name:           wrapper.Feature.Name,
			Steps:          wrapper.Feature.StepCount(),
			Children:       wrapper.Feature.FeatureElements,
		})
	}
	return rows, nil
}

// FilterScenariosByTag keeps rows that carry tag themselves or inherit it
func FilterScenariosByTag(rows []ScenarioRow, tag string) []ScenarioRow {
	if tag == "" {
		return rows
	}
	filtered := make([]ScenarioRow, 0, len(rows))
	for _, row := range rows {
		if row.HasTag(tag) || row.parentFeature().HasTag(tag) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// FilterFeaturesByTag keeps features that carry tag
func FilterFeaturesByTag(rows []FeatureRow, tag string) []FeatureRow {
	if tag == "" {
		return rows
	}
	filtered := make([]FeatureRow, 0, len(rows))
	for _, row := range rows {
		if row.Feature.HasTag(tag) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// FindScenario returns the first scenario row named name
func FindScenario(doc *models.Document, name string) (ScenarioRow, bool, error) {
	rows, err := FlattenScenarios(doc, "")
	if err != nil {
		return ScenarioRow{}, false, err
	}
	for _, row := range rows {
		if row.Name == name {
			return row, true, nil
		}
	}
	return ScenarioRow{}, false, nil
}
