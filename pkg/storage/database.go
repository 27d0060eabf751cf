package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	_ "github.com/mattn/go-sqlite3"

	"github.com/lirany1/pickles-explorer/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// timestamps are stored as sortable UTC text so sqlite date functions apply
const timeLayout = "2006-01-02 15:04:05.000"

// Database keeps the cached report text and the aggregate history
type Database struct {
	db   *sql.DB
	path string
}

// Snapshot is one recorded aggregation of a report
type Snapshot struct {
	ID            string         `json:"id"`
	Timestamp     time.Time      `json:"timestamp"`
	Source        string         `json:"source"`
	FeatureCount  int            `json:"featureCount"`
	ScenarioCount int            `json:"scenarioCount"`
	StepCount     int            `json:"stepCount"`
	TagCounts     map[string]int `json:"tagCounts"`
}

// NewDatabase creates or opens the explorer database under dataDir
func NewDatabase(dataDir string) (*Database, error) {
	dbDir := filepath.Join(dataDir, ".pickles-explorer")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, "explorer.db")
	logger.Debugf("Opening database at: %s", dbPath)

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &Database{
		db:   db,
		path: dbPath,
	}

	if err := database.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return database, nil
}

// Path returns the database file location
func (d *Database) Path() string {
	return d.path
}

func (d *Database) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS cache_entries (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			timestamp TEXT NOT NULL,
			source TEXT,
			feature_count INTEGER NOT NULL,
			scenario_count INTEGER NOT NULL,
			step_count INTEGER NOT NULL,
			tag_counts TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_snapshot_timestamp
		 ON snapshots(timestamp DESC)`,
	}

	for i, migration := range migrations {
		if _, err := d.db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}

	return nil
}

// Get returns the cached value for key
func (d *Database) Get(key string) (string, bool, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM cache_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache entry %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value
func (d *Database) Set(key, value string) error {
	query := `
		INSERT INTO cache_entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := d.db.Exec(query, key, value, time.Now().UTC().Format(timeLayout)); err != nil {
		return fmt.Errorf("failed to write cache entry %q: %w", key, err)
	}
	return nil
}

// SaveSnapshot records an aggregation result
func (d *Database) SaveSnapshot(snapshot *Snapshot) error {
	query := `
		INSERT INTO snapshots (
			id, timestamp, source, feature_count,
			scenario_count, step_count, tag_counts
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	tagsJSON, err := json.Marshal(snapshot.TagCounts)
	if err != nil {
		return fmt.Errorf("failed to encode tag counts: %w", err)
	}

	_, err = d.db.Exec(query,
		snapshot.ID,
		snapshot.Timestamp.UTC().Format(timeLayout),
		snapshot.Source,
		snapshot.FeatureCount,
		snapshot.ScenarioCount,
		snapshot.StepCount,
		string(tagsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	logger.Debugf("Saved snapshot: %s", snapshot.ID)
	return nil
}

// GetRecentSnapshots retrieves the last N snapshots, newest first
func (d *Database) GetRecentSnapshots(limit int) ([]Snapshot, error) {
	query := `
		SELECT
			id, timestamp, source, feature_count,
			scenario_count, step_count, tag_counts
		FROM snapshots
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?
	`

	rows, err := d.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var snapshot Snapshot
		var timestamp, tagsJSON string
		var source sql.NullString

		err := rows.Scan(
			&snapshot.ID,
			&timestamp,
			&source,
			&snapshot.FeatureCount,
			&snapshot.ScenarioCount,
			&snapshot.StepCount,
			&tagsJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		snapshot.Source = source.String
		snapshot.Timestamp, err = time.Parse(timeLayout, timestamp)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s has bad timestamp %q: %w", snapshot.ID, timestamp, err)
		}
		snapshot.TagCounts = make(map[string]int)
		if tagsJSON != "" {
			if err := json.Unmarshal([]byte(tagsJSON), &snapshot.TagCounts); err != nil {
				return nil, fmt.Errorf("snapshot %s has bad tag counts: %w", snapshot.ID, err)
			}
		}

		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}

// CleanupOldData removes snapshots older than retentionDays
func (d *Database) CleanupOldData(retentionDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Format(timeLayout)

	result, err := d.db.Exec(`DELETE FROM snapshots WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup snapshots: %w", err)
	}

	removed, _ := result.RowsAffected()
	if removed > 0 {
		logger.Infof("Cleaned up %d old snapshots", removed)
	}
	return removed, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
