package analytics

import (
	"math"
	"sort"

	"github.com/lirany1/pickles-explorer/pkg/models"
)

// Aggregates holds the summary counts of a report
type Aggregates struct {
	FeatureCount  int            `json:"featureCount"`
	ScenarioCount int            `json:"scenarioCount"`
	StepCount     int            `json:"stepCount"`
	TagCounts     map[string]int `json:"tagCounts"`
}

// TagStat is one row of the tags card
type TagStat struct {
	Tag     string   `json:"tag"`
	Count   int      `json:"count"`
	Percent *float64 `json:"percent"`
}

// CoverageStat reports how many scenarios carry a given tag
type CoverageStat struct {
	Tag       string `json:"tag"`
	Count     int    `json:"count"`
	Scenarios int    `json:"scenarios"`
	Percent   *int   `json:"percent"`
}

// Aggregate computes the counts of doc.
//
// Tag counts are scenario weighted: a feature tag counts once for every
// scenario of the feature, and a scenario tag counts once for its scenario.
// A tag present on both a feature and one of its scenarios collects both
// contributions.
func Aggregate(doc *models.Document) (*Aggregates, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	agg := &Aggregates{
		FeatureCount: len(doc.Features),
		TagCounts:    make(map[string]int),
	}

	for _, wrapper := range doc.Features {
		feature := wrapper.Feature
		childCount := len(feature.FeatureElements)
		agg.ScenarioCount += childCount

		for _, tag := range feature.Tags {
			agg.TagCounts[tag] += childCount
		}

		for _, scenario := range feature.FeatureElements {
			agg.StepCount += len(scenario.Steps)
			for _, tag := range scenario.Tags {
				agg.TagCounts[tag]++
			}
		}
	}

	return agg, nil
}

// TagPercent returns the share of scenarios counted for tag, in percent.
// The second result is false when the report has no scenarios.
func (a *Aggregates) TagPercent(tag string) (float64, bool) {
	if a == nil || a.ScenarioCount == 0 {
		return 0, false
	}
	return float64(a.TagCounts[tag]) / float64(a.ScenarioCount) * 100, true
}

// RoundedPercent is TagPercent rounded half away from zero, as shown on
// progress bars
func (a *Aggregates) RoundedPercent(tag string) (int, bool) {
	percent, ok := a.TagPercent(tag)
	if !ok {
		return 0, false
	}
	return int(math.Round(percent)), true
}

// Tags returns the tag names sorted alphabetically
func (a *Aggregates) Tags() []string {
	tags := make([]string, 0, len(a.TagCounts))
	for tag := range a.TagCounts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// TagStats lists every tag with its count and percentage
func TagStats(a *Aggregates) []TagStat {
	stats := make([]TagStat, 0, len(a.TagCounts))
	for _, tag := range a.Tags() {
		stat := TagStat{Tag: tag, Count: a.TagCounts[tag]}
		if percent, ok := a.TagPercent(tag); ok {
			stat.Percent = &percent
		}
		stats = append(stats, stat)
	}
	return stats
}

// Coverage reports the tag count against the scenario count
func Coverage(a *Aggregates, tag string) CoverageStat {
	stat := CoverageStat{
		Tag:       tag,
		Count:     a.TagCounts[tag],
		Scenarios: a.ScenarioCount,
	}
	if percent, ok := a.RoundedPercent(tag); ok {
		stat.Percent = &percent
	}
	return stat
}
