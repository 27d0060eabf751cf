package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lirany1/pickles-explorer/pkg/config"
	"github.com/lirany1/pickles-explorer/pkg/models"
	"github.com/lirany1/pickles-explorer/pkg/storage"
)

// Trend directions on scenario count
const (
	TrendGrowing   = "growing"
	TrendShrinking = "shrinking"
	TrendStable    = "stable"
)

// Summary is everything the stats and tags cards show
type Summary struct {
	Source      string       `json:"source"`
	GeneratedAt time.Time    `json:"generatedAt"`
	Aggregates  *Aggregates  `json:"aggregates"`
	Tags        []TagStat    `json:"tags"`
	Coverage    CoverageStat `json:"coverage"`
}

// TrendData describes how the inventory changed over recorded snapshots
type TrendData struct {
	Snapshots []storage.Snapshot `json:"snapshots"`
	Direction string             `json:"direction"`
	// ScenarioDelta is newest minus previous scenario count
	ScenarioDelta int `json:"scenarioDelta"`
}

// Engine produces summaries and keeps their history when a database is set
type Engine struct {
	config *config.Config
	db     *storage.Database
}

// NewEngine creates an engine; db may be nil to disable history
func NewEngine(cfg *config.Config, db *storage.Database) *Engine {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Engine{
		config: cfg,
		db:     db,
	}
}

// HasHistory reports whether snapshots can be recorded
func (e *Engine) HasHistory() bool {
	return e.db != nil
}

// Summarize aggregates doc for display
func (e *Engine) Summarize(doc *models.Document, source string) (*Summary, error) {
	agg, err := Aggregate(doc)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Source:      source,
		GeneratedAt: time.Now(),
		Aggregates:  agg,
		Tags:        TagStats(agg),
		Coverage:    Coverage(agg, e.config.CoverageTag),
	}, nil
}

// Record saves summary as a snapshot and returns its ID
func (e *Engine) Record(summary *Summary) (string, error) {
	if e.db == nil {
		return "", fmt.Errorf("database not initialized")
	}

	id := uuid.New().String()
	snapshot := &storage.Snapshot{
		ID:            id,
		Timestamp:     summary.GeneratedAt,
		Source:        summary.Source,
		FeatureCount:  summary.Aggregates.FeatureCount,
		ScenarioCount: summary.Aggregates.ScenarioCount,
		StepCount:     summary.Aggregates.StepCount,
		TagCounts:     summary.Aggregates.TagCounts,
	}

	if err := e.db.SaveSnapshot(snapshot); err != nil {
		return "", err
	}
	return id, nil
}

// Trend loads up to limit recent snapshots, oldest first, and classifies the
// last change in scenario count
func (e *Engine) Trend(limit int) (*TrendData, error) {
	if e.db == nil {
		return &TrendData{Snapshots: []storage.Snapshot{}, Direction: TrendStable}, nil
	}

	recent, err := e.db.GetRecentSnapshots(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}

	// newest first from the database
	snapshots := make([]storage.Snapshot, len(recent))
	for i, s := range recent {
		snapshots[len(recent)-1-i] = s
	}

	trend := &TrendData{Snapshots: snapshots, Direction: TrendStable}
	if len(snapshots) >= 2 {
		current := snapshots[len(snapshots)-1]
		previous := snapshots[len(snapshots)-2]
		trend.ScenarioDelta = current.ScenarioCount - previous.ScenarioCount
		switch {
		case trend.ScenarioDelta > 0:
			trend.Direction = TrendGrowing
		case trend.ScenarioDelta < 0:
			trend.Direction = TrendShrinking
		}
	}

	return trend, nil
}

// Cleanup drops snapshots past the configured retention
func (e *Engine) Cleanup() error {
	if e.db == nil {
		return nil
	}
	_, err := e.db.CleanupOldData(e.config.RetentionDays)
	return err
}
