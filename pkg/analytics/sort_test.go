package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func featureNames(rows []FeatureRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func TestSortScenarios(t *testing.T) {
	doc := sampleDocument()

	tests := []struct {
		key      string
		desc     bool
		expected []string
	}{
		{ScenarioSortName, false, []string{"Invoice export", "Password reset", "User Login Flow"}},
		{ScenarioSortName, true, []string{"User Login Flow", "Password reset", "Invoice export"}},
		{ScenarioSortSteps, true, []string{"Password reset", "User Login Flow", "Invoice export"}},
		{ScenarioSortSteps, false, []string{"Invoice export", "User Login Flow", "Password reset"}},
		// stable: scenarios of the same feature keep document order
		{ScenarioSortParent, false, []string{"User Login Flow", "Password reset", "Invoice export"}},
		{ScenarioSortParent, true, []string{"Invoice export", "User Login Flow", "Password reset"}},
	}

	for _, tt := range tests {
		rows := flattenScenarios(t, doc, "")
		require.NoError(t, SortScenarios(rows, tt.key, tt.desc))
		assert.Equal(t, tt.expected, names(rows), "key=%s desc=%v", tt.key, tt.desc)
	}

	assert.Error(t, SortScenarios(flattenScenarios(t, doc, ""), "bogus", false))
}

func TestSortFeatures(t *testing.T) {
	doc := sampleDocument()

	tests := []struct {
		key      string
		desc     bool
		expected []string
	}{
		// collation places accented letters with their base letter
		{FeatureSortName, false, []string{"Authentication", "Billing", "Éclair ordering"}},
		{FeatureSortFolder, true, []string{"Éclair ordering", "Billing", "Authentication"}},
		{FeatureSortScenarios, true, []string{"Authentication", "Billing", "Éclair ordering"}},
		{FeatureSortSteps, false, []string{"Éclair ordering", "Billing", "Authentication"}},
	}

	for _, tt := range tests {
		rows := flattenFeatures(t, doc)
		require.NoError(t, SortFeatures(rows, tt.key, tt.desc))
		assert.Equal(t, tt.expected, featureNames(rows), "key=%s desc=%v", tt.key, tt.desc)
	}

	assert.Error(t, SortFeatures(flattenFeatures(t, doc), "bogus", false))
}

func TestCollationIsCaseInsensitiveFirst(t *testing.T) {
	doc := sampleDocument()
	doc.Features[1].Feature.FeatureElements[0].Name = "apple pie"

	rows := flattenScenarios(t, doc, "")
	require.NoError(t, SortScenarios(rows, ScenarioSortName, false))
	assert.Equal(t, "apple pie", rows[0].Name)
}

func TestDefaultDescending(t *testing.T) {
	assert.True(t, DefaultDescending(ScenarioSortSteps))
	assert.True(t, DefaultDescending(FeatureSortScenarios))
	assert.False(t, DefaultDescending(ScenarioSortName))
	assert.False(t, DefaultDescending(FeatureSortFolder))
}
