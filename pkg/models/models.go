package models

// Document is the root of a Pickles feature report
type Document struct {
	Features []FeatureWrapper `json:"Features"`
}

// FeatureWrapper places a feature in the folder tree of the report
type FeatureWrapper struct {
	Feature        *Feature `json:"Feature"`
	RelativeFolder string   `json:"RelativeFolder"`
}

// Feature is a named group of scenarios, the top-level unit of the report
type Feature struct {
	Name            string     `json:"Name"`
	Description     string     `json:"Description,omitempty"`
	Tags            []string   `json:"Tags"`
	FeatureElements []Scenario `json:"FeatureElements"`
}

// Scenario is one executable test case within a feature
type Scenario struct {
	Name        string         `json:"Name"`
	Description string         `json:"Description,omitempty"`
	Tags        []string       `json:"Tags"`
	Steps       []Step         `json:"Steps"`
	Examples    []ExampleTable `json:"Examples,omitempty"`
}

// Step is one action or assertion line of a scenario
type Step struct {
	Keyword string `json:"Keyword"`
	Name    string `json:"Name"`
}

// ExampleTable parameterizes a scenario outline
type ExampleTable struct {
	Name          string        `json:"Name,omitempty"`
	TableArgument TableArgument `json:"TableArgument"`
}

// TableArgument holds the header and data rows of an example table
type TableArgument struct {
	HeaderRow []string   `json:"HeaderRow"`
	DataRows  [][]string `json:"DataRows"`
}

// ScenarioCount returns the number of scenarios in the feature
func (f *Feature) ScenarioCount() int {
	if f == nil {
		return 0
	}
	return len(f.FeatureElements)
}

// StepCount returns the number of steps across all scenarios of the feature
func (f *Feature) StepCount() int {
	if f == nil {
		return 0
	}
	count := 0
	for _, scenario := range f.FeatureElements {
		count += len(scenario.Steps)
	}
	return count
}

// HasTag reports whether the feature itself carries tag
func (f *Feature) HasTag(tag string) bool {
	if f == nil {
		return false
	}
	return containsTag(f.Tags, tag)
}

// HasTag reports whether the scenario itself carries tag
func (s Scenario) HasTag(tag string) bool {
	return containsTag(s.Tags, tag)
}

// EffectiveTags returns the scenario's own tags followed by the tags it
// inherits from parent. Duplicates across the two sources are kept.
func (s Scenario) EffectiveTags(parent *Feature) []string {
	tags := make([]string, 0, len(s.Tags))
	tags = append(tags, s.Tags...)
	if parent != nil {
		tags = append(tags, parent.Tags...)
	}
	return tags
}

// PrimaryExamples returns the first example table of the scenario, if any
func (s Scenario) PrimaryExamples() (*TableArgument, bool) {
	if len(s.Examples) == 0 {
		return nil, false
	}
	return &s.Examples[0].TableArgument, true
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
