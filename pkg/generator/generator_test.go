package generator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/getgauge/gauge-proto/go/gauge_messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/lirany1/pickles-explorer/pkg/config"
	"github.com/lirany1/pickles-explorer/pkg/export"
	"github.com/lirany1/pickles-explorer/pkg/models"
	"github.com/lirany1/pickles-explorer/pkg/storage"
)

func document() *models.Document {
	return &models.Document{Features: []models.FeatureWrapper{{
		RelativeFolder: "cart.feature",
		Feature: &models.Feature{
			Name: "Cart",
			Tags: []string{"@automated"},
			FeatureElements: []models.Scenario{
				{Name: "Add item", Tags: []string{}, Steps: []models.Step{{Keyword: "When", Name: "I add"}}},
			},
		},
	}}}
}

func TestGenerate(t *testing.T) {
	cfg := config.NewConfig()
	cfg.DataDir = t.TempDir()
	cfg.ExportFormats = []string{"html", "json", "csv", "pdf"}

	out := filepath.Join(t.TempDir(), "report")
	require.NoError(t, NewGenerator(cfg, nil).Generate(document(), "test", out))

	index, err := os.ReadFile(filepath.Join(out, IndexFile))
	require.NoError(t, err)
	assert.Contains(t, string(index), "Add item")

	assert.FileExists(t, filepath.Join(out, export.JSONFile))
	assert.FileExists(t, filepath.Join(out, export.CSVFile))
}

func TestGenerate_RecordsHistory(t *testing.T) {
	cfg := config.NewConfig()
	cfg.DataDir = t.TempDir()

	db, err := storage.NewDatabase(cfg.DataDir)
	require.NoError(t, err)
	defer db.Close()

	g := NewGenerator(cfg, db)
	require.NoError(t, g.Generate(document(), "first", t.TempDir()))
	require.NoError(t, g.Generate(document(), "second", t.TempDir()))

	snapshots, err := db.GetRecentSnapshots(10)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, "second", snapshots[0].Source)
	assert.Equal(t, 1, snapshots[0].ScenarioCount)
}

func TestGenerate_InvalidDocument(t *testing.T) {
	err := NewGenerator(nil, nil).Generate(&models.Document{}, "bad", t.TempDir())
	assert.Error(t, err)
}

func TestGenerateFromGauge_MissingFile(t *testing.T) {
	err := NewGenerator(nil, nil).GenerateFromGauge(filepath.Join(t.TempDir(), "nope.pb"), ".", t.TempDir())
	assert.Error(t, err)
}

func TestGenerateFromGauge(t *testing.T) {
	result := &gauge_messages.ProtoSuiteResult{
		SpecResults: []*gauge_messages.ProtoSpecResult{{
			ProtoSpec: &gauge_messages.ProtoSpec{
				SpecHeading: "Checkout",
				FileName:    "/project/specs/checkout.spec",
				Tags:        []string{"@automated"},
				Items: []*gauge_messages.ProtoItem{{
					ItemType: gauge_messages.ProtoItem_Scenario,
					Scenario: &gauge_messages.ProtoScenario{
						ScenarioHeading: "Pay by card",
						ScenarioItems: []*gauge_messages.ProtoItem{{
							ItemType: gauge_messages.ProtoItem_Step,
							Step:     &gauge_messages.ProtoStep{ActualText: "Enter card details"},
						}},
					},
				}},
			},
		}},
	}
	data, err := proto.Marshal(result)
	require.NoError(t, err)

	input := filepath.Join(t.TempDir(), "last_run_result")
	require.NoError(t, os.WriteFile(input, data, 0644))

	cfg := config.NewConfig()
	cfg.DataDir = t.TempDir()
	cfg.ExportFormats = []string{"html", "json"}

	out := filepath.Join(t.TempDir(), "report")
	require.NoError(t, NewGenerator(cfg, nil).GenerateFromGauge(input, "/project", out))

	index, err := os.ReadFile(filepath.Join(out, IndexFile))
	require.NoError(t, err)
	assert.Contains(t, string(index), "Pay by card")

	exported, err := os.ReadFile(filepath.Join(out, export.JSONFile))
	require.NoError(t, err)
	assert.Contains(t, string(exported), "specs/checkout.spec")
}
