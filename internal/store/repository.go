// Package store persists evaluation runs to SQLite so results remain
// comparable across pipeline invocations.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one pipeline execution with its headline metrics.
type Run struct {
	ID         string
	Mode       string // "attribution" or "verification"
	Input      string
	ConfigJSON string
	Accuracy   float64
	TrainSize  int
	TestSize   int
	StartedAt  time.Time
	FinishedAt time.Time
}

// ClassMetric is one per-class row of a run's evaluation table.
type ClassMetric struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// SaveRun inserts a run and its per-class metrics in one transaction. An
// empty run id gets a fresh UUID; the stored id is returned.
func SaveRun(dbPath string, run Run, metrics []ClassMetric) (string, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := conn.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs(id, mode, input, config_json, accuracy, train_size, test_size, started_at, finished_at)
		 VALUES(?,?,?,?,?,?,?,?,?)`,
		run.ID,
		run.Mode,
		run.Input,
		run.ConfigJSON,
		run.Accuracy,
		run.TrainSize,
		run.TestSize,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, m := range metrics {
		if _, err := tx.Exec(
			`INSERT INTO class_metrics(run_id, label, precision, recall, f1, support) VALUES(?,?,?,?,?,?)`,
			run.ID,
			m.Label,
			m.Precision,
			m.Recall,
			m.F1,
			m.Support,
		); err != nil {
			return "", fmt.Errorf("insert class metric: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit tx: %w", err)
	}
	return run.ID, nil
}

// RecentRuns lists runs newest-first.
func RecentRuns(dbPath string, limit int) ([]Run, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.Query(
		`SELECT id, mode, input, config_json, accuracy, train_size, test_size, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Mode, &r.Input, &r.ConfigJSON, &r.Accuracy, &r.TrainSize, &r.TestSize, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// MetricsForRun lists a run's per-class rows in insertion order.
func MetricsForRun(dbPath, runID string) ([]ClassMetric, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.Query(
		`SELECT label, precision, recall, f1, support FROM class_metrics WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("query class metrics: %w", err)
	}
	defer rows.Close()

	var out []ClassMetric
	for rows.Next() {
		var m ClassMetric
		if err := rows.Scan(&m.Label, &m.Precision, &m.Recall, &m.F1, &m.Support); err != nil {
			return nil, fmt.Errorf("scan class metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountRows counts rows in a table.
func CountRows(dbPath, table string) (int, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	return countRowsConn(conn, table)
}

func countRowsConn(conn *sql.DB, table string) (int, error) {
	row := conn.QueryRow(`SELECT COUNT(*) FROM ` + table)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("scan count: %w", err)
	}
	return count, nil
}
