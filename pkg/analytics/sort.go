package analytics

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort keys accepted by SortScenarios
const (
	ScenarioSortParent = "parent"
	ScenarioSortName   = "name"
	ScenarioSortSteps  = "steps"
)

// Sort keys accepted by SortFeatures
const (
	FeatureSortName      = "name"
	FeatureSortFolder    = "folder"
	FeatureSortScenarios = "scenarios"
	FeatureSortSteps     = "steps"
)

// DefaultDescending reports whether key sorts descending unless asked
// otherwise. Count columns default to largest first.
func DefaultDescending(key string) bool {
	switch key {
	case ScenarioSortSteps, FeatureSortScenarios:
		return true
	}
	return false
}

// newCollator is created per sort; collators are not safe for concurrent use
func newCollator() *collate.Collator {
	return collate.New(language.English)
}

// SortScenarios orders rows in place by key. The sort is stable.
func SortScenarios(rows []ScenarioRow, key string, desc bool) error {
	var less func(a, b ScenarioRow) bool

	switch key {
	case ScenarioSortParent:
		c := newCollator()
		less = func(a, b ScenarioRow) bool {
			return c.CompareString(a.Parent.Feature.Name, b.Parent.Feature.Name) < 0
		}
	case ScenarioSortName:
		c := newCollator()
		less = func(a, b ScenarioRow) bool { return c.CompareString(a.Name, b.Name) < 0 }
	case ScenarioSortSteps:
		less = func(a, b ScenarioRow) bool { return len(a.Steps) < len(b.Steps) }
	default:
		return fmt.Errorf("unknown scenario sort key %q", key)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
	return nil
}

// SortFeatures orders rows in place by key. The sort is stable.
func SortFeatures(rows []FeatureRow, key string, desc bool) error {
	var less func(a, b FeatureRow) bool

	switch key {
	case FeatureSortName:
		c := newCollator()
		less = func(a, b FeatureRow) bool { return c.CompareString(a.Name, b.Name) < 0 }
	case FeatureSortFolder:
		c := newCollator()
		less = func(a, b FeatureRow) bool { return c.CompareString(a.RelativeFolder, b.RelativeFolder) < 0 }
	case FeatureSortScenarios:
		less = func(a, b FeatureRow) bool {
			return a.Feature.ScenarioCount() < b.Feature.ScenarioCount()
		}
	case FeatureSortSteps:
		less = func(a, b FeatureRow) bool { return a.Steps < b.Steps }
	default:
		return fmt.Errorf("unknown feature sort key %q", key)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
	return nil
}
