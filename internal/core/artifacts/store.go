// Package artifacts persists run outputs: serialized partitions, entity
// state snapshots, and evaluation reports. This is the pipeline's only
// disk surface; the pipeline itself stays I/O-free.
package artifacts

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/charleschow/pregame/internal/core/dataset"
	"github.com/charleschow/pregame/internal/telemetry"
)

type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS partition_samples (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL,
			split      TEXT NOT NULL,
			contest_id TEXT NOT NULL,
			group_key  TEXT,
			label      INTEGER NOT NULL,
			ts         TEXT NOT NULL,
			features   TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ps_run ON partition_samples(run_id, split)`,
		`CREATE TABLE IF NOT EXISTS state_snapshots (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL,
			created_at TEXT NOT NULL,
			state      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ss_run ON state_snapshots(run_id)`,
		`CREATE TABLE IF NOT EXISTS eval_reports (
			run_id     TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			report     TEXT NOT NULL
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema (%s): %w", stmt, err)
		}
	}

	telemetry.Debugf("artifact store: opened %s", path)

	return &Store{db: db}, nil
}

// SavePartition writes every sample of all three splits under one run id
// in a single transaction.
func (s *Store) SavePartition(runID string, p dataset.Partition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin partition save: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO partition_samples (run_id, split, contest_id, group_key, label, ts, features)
		 VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare partition insert: %w", err)
	}
	defer stmt.Close()

	for _, group := range []struct {
		split   string
		samples []dataset.Sample
	}{
		{"train", p.Train},
		{"val", p.Val},
		{"test", p.Test},
	} {
		for _, sm := range group.samples {
			feats, err := json.Marshal(sm.Features)
			if err != nil {
				return fmt.Errorf("encode features for %s: %w", sm.ContestID, err)
			}
			if _, err := stmt.Exec(
				runID, group.split, sm.ContestID, sm.GroupKey, sm.Label,
				sm.Timestamp.UTC().Format(time.RFC3339Nano), string(feats),
			); err != nil {
				return fmt.Errorf("insert sample %s: %w", sm.ContestID, err)
			}
		}
	}

	return tx.Commit()
}

// SaveSnapshot stores a serialized entity state store for resumable runs.
func (s *Store) SaveSnapshot(runID string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO state_snapshots (run_id, created_at, state) VALUES (?,?,?)`,
		runID, time.Now().UTC().Format(time.RFC3339Nano), string(blob),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent stored state blob, if any.
func (s *Store) LatestSnapshot() ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var blob string
	err := s.db.QueryRow(
		`SELECT state FROM state_snapshots ORDER BY id DESC LIMIT 1`,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot: %w", err)
	}
	return []byte(blob), true, nil
}

func (s *Store) SaveReport(runID string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO eval_reports (run_id, created_at, report) VALUES (?,?,?)`,
		runID, time.Now().UTC().Format(time.RFC3339Nano), string(blob),
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

type Summary struct {
	Runs        int64
	SplitCounts map[string]int64
	Snapshots   int64
	Reports     int64
}

func (s *Store) Summarize() (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{SplitCounts: make(map[string]int64)}

	if err := s.db.QueryRow(`SELECT COUNT(DISTINCT run_id) FROM partition_samples`).Scan(&sum.Runs); err != nil {
		return sum, fmt.Errorf("count runs: %w", err)
	}

	rows, err := s.db.Query(`SELECT split, COUNT(*) FROM partition_samples GROUP BY split`)
	if err != nil {
		return sum, fmt.Errorf("count splits: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var split string
		var n int64
		if err := rows.Scan(&split, &n); err != nil {
			return sum, fmt.Errorf("scan split count: %w", err)
		}
		sum.SplitCounts[split] = n
	}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM state_snapshots`).Scan(&sum.Snapshots); err != nil {
		return sum, fmt.Errorf("count snapshots: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM eval_reports`).Scan(&sum.Reports); err != nil {
		return sum, fmt.Errorf("count reports: %w", err)
	}

	return sum, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
