// Package gauge turns Gauge suite results into report documents, so a Gauge
// project can be explored like a Pickles report.
package gauge

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/getgauge/gauge-proto/go/gauge_messages"
	"google.golang.org/protobuf/proto"

	"github.com/lirany1/pickles-explorer/pkg/models"
)

// StepKeyword is used for Gauge steps, which carry no Gherkin keyword
const StepKeyword = "*"

// ReadFile reads a protobuf encoded suite result
func ReadFile(path string) (*gauge_messages.ProtoSuiteResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	result := &gauge_messages.ProtoSuiteResult{}
	if err := proto.Unmarshal(data, result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal proto data: %w", err)
	}
	return result, nil
}

// Convert maps a suite result onto a document: each spec becomes a feature
// and each scenario keeps its steps. A spec data table becomes the example
// table of every table driven scenario in that spec. projectRoot, when set,
// makes spec file names relative.
func Convert(result *gauge_messages.ProtoSuiteResult, projectRoot string) *models.Document {
	doc := &models.Document{Features: make([]models.FeatureWrapper, 0)}

	for _, specResult := range result.GetSpecResults() {
		spec := specResult.GetProtoSpec()
		if spec == nil {
			continue
		}
		doc.Features = append(doc.Features, models.FeatureWrapper{
			Feature:        convertSpec(spec),
			RelativeFolder: relativeFolder(spec.GetFileName(), projectRoot),
		})
	}

	return doc
}

func convertSpec(spec *gauge_messages.ProtoSpec) *models.Feature {
	feature := &models.Feature{
		Name:            spec.GetSpecHeading(),
		Tags:            nonNil(spec.GetTags()),
		FeatureElements: make([]models.Scenario, 0),
	}

	var dataTable *models.TableArgument
	seen := make(map[string]int)

	for _, item := range spec.GetItems() {
		switch item.GetItemType() {
		case gauge_messages.ProtoItem_Table:
			dataTable = convertTable(item.GetTable())

		case gauge_messages.ProtoItem_Scenario:
			feature.FeatureElements = append(feature.FeatureElements, convertScenario(item.GetScenario()))

		case gauge_messages.ProtoItem_TableDrivenScenario:
			// one item per data row; collapse them into a single outline
			scenario := convertScenario(item.GetTableDrivenScenario().GetScenario())
			if _, ok := seen[scenario.Name]; ok {
				continue
			}
			if dataTable != nil {
				scenario.Examples = []models.ExampleTable{{TableArgument: *dataTable}}
			}
			seen[scenario.Name] = len(feature.FeatureElements)
			feature.FeatureElements = append(feature.FeatureElements, scenario)
		}
	}

	return feature
}

func convertScenario(scenario *gauge_messages.ProtoScenario) models.Scenario {
	converted := models.Scenario{
		Name:  scenario.GetScenarioHeading(),
		Tags:  nonNil(scenario.GetTags()),
		Steps: make([]models.Step, 0),
	}

	for _, item := range scenario.GetScenarioItems() {
		if item.GetItemType() != gauge_messages.ProtoItem_Step {
			continue
		}
		converted.Steps = append(converted.Steps, models.Step{
			Keyword: StepKeyword,
			Name:    stepText(item.GetStep()),
		})
	}

	return converted
}

func stepText(step *gauge_messages.ProtoStep) string {
	if text := step.GetActualText(); text != "" {
		return text
	}
	return step.GetParsedText()
}

func convertTable(table *gauge_messages.ProtoTable) *models.TableArgument {
	if table == nil {
		return nil
	}
	converted := &models.TableArgument{
		HeaderRow: nonNil(table.GetHeaders().GetCells()),
		DataRows:  make([][]string, 0, len(table.GetRows())),
	}
	for _, row := range table.GetRows() {
		converted.DataRows = append(converted.DataRows, nonNil(row.GetCells()))
	}
	return converted
}

func relativeFolder(fileName, projectRoot string) string {
	if fileName == "" {
		return ""
	}
	if projectRoot != "" {
		if rel, err := filepath.Rel(projectRoot, fileName); err == nil {
			return rel
		}
	}
	return filepath.Base(fileName)
}

// nonNil keeps Validate happy for specs without tags or cells
func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
