package models

import "fmt"

// ValidationError reports a document that is well-formed JSON but is missing
// a field the report shape requires
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid document: %s %s", e.Path, e.Reason)
}

// Validate checks that every required field of the document is present.
// The first violation is returned; Examples may be absent.
func (d *Document) Validate() error {
	if d == nil {
		return &ValidationError{Path: "$", Reason: "is null"}
	}
	if d.Features == nil {
		return &ValidationError{Path: "Features", Reason: "is missing"}
	}

	for i, wrapper := range d.Features {
		path := fmt.Sprintf("Features[%d].Feature", i)
		feature := wrapper.Feature
		if feature == nil {
			return &ValidationError{Path: path, Reason: "is missing"}
		}
		if feature.Tags == nil {
			return &ValidationError{Path: path + ".Tags", Reason: "is missing"}
		}
		if feature.FeatureElements == nil {
			return &ValidationError{Path: path + ".FeatureElements", Reason: "is missing"}
		}

		for j, scenario := range feature.FeatureElements {
			scenarioPath := fmt.Sprintf("%s.FeatureElements[%d]", path, j)
			if scenario.Tags == nil {
				return &ValidationError{Path: scenarioPath + ".Tags", Reason: "is missing"}
			}
			if scenario.Steps == nil {
				return &ValidationError{Path: scenarioPath + ".Steps", Reason: "is missing"}
			}
			for k, example := range scenario.Examples {
				if example.TableArgument.HeaderRow == nil {
					return &ValidationError{
						Path:   fmt.Sprintf("%s.Examples[%d].TableArgument.HeaderRow", scenarioPath, k),
						Reason: "is missing",
					}
				}
			}
		}
	}

	return nil
}
