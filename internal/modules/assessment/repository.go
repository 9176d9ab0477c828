package assessment

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aristath/stresswatch/internal/domain"
)

// Schema creates the assessment tables. Every scoring run is kept: runs are
// the audit trail of what the model said and when.
const Schema = `
CREATE TABLE IF NOT EXISTS assessment_runs (
	run_id         TEXT PRIMARY KEY,
	scenario       TEXT NOT NULL DEFAULT '',
	intensity      REAL NOT NULL DEFAULT 0,
	customer_count INTEGER NOT NULL,
	alert_count    INTEGER NOT NULL,
	created_at     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS assessments (
	run_id            TEXT NOT NULL,
	customer_id       TEXT NOT NULL,
	risk_score        INTEGER NOT NULL,
	health_score      INTEGER NOT NULL,
	alert             INTEGER NOT NULL,
	recommended_offer TEXT NOT NULL,
	top_factors       TEXT NOT NULL,
	created_at        INTEGER NOT NULL,
	PRIMARY KEY (run_id, customer_id)
);

CREATE INDEX IF NOT EXISTS idx_assessments_customer ON assessments(customer_id);
`

// RunInfo summarizes one stored scoring run.
type RunInfo struct {
	RunID         string  `json:"run_id"`
	Scenario      string  `json:"scenario,omitempty"`
	Intensity     float64 `json:"intensity,omitempty"`
	CustomerCount int     `json:"customer_count"`
	AlertCount    int     `json:"alert_count"`
	CreatedAt     int64   `json:"created_at"`
}

// Repository persists scoring runs.
type Repository struct {
	db *sql.DB
}

// NewRepository creates an assessment repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// StoreRun saves a run header and its per-customer assessments in one
// transaction. scenario is empty for baseline (un-shocked) runs.
func (r *Repository) StoreRun(runID, scenario string, intensity float64, list []domain.Assessment) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()

	alerts := 0
	for i := range list {
		if list[i].Alert {
			alerts++
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO assessment_runs (run_id, scenario, intensity, customer_count, alert_count, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		runID, scenario, intensity, len(list), alerts, now,
	); err != nil {
		return fmt.Errorf("failed to store run %s: %w", runID, err)
	}

	stmt, err := tx.Prepare(
		"INSERT INTO assessments (run_id, customer_id, risk_score, health_score, alert, recommended_offer, top_factors, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := range list {
		a := &list[i]
		factors, err := json.Marshal(a.TopFactors)
		if err != nil {
			return fmt.Errorf("failed to marshal factors for %s: %w", a.CustomerID, err)
		}
		alert := 0
		if a.Alert {
			alert = 1
		}
		if _, err := stmt.Exec(
			runID, a.CustomerID, a.RiskScore, a.HealthScore, alert,
			a.RecommendedOffer, string(factors), now,
		); err != nil {
			return fmt.Errorf("failed to store assessment for %s: %w", a.CustomerID, err)
		}
	}

	return tx.Commit()
}

// RecentRuns returns run headers, newest first.
func (r *Repository) RecentRuns(limit int) ([]RunInfo, error) {
	rows, err := r.db.Query(
		"SELECT run_id, scenario, intensity, customer_count, alert_count, created_at FROM assessment_runs ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var info RunInfo
		if err := rows.Scan(&info.RunID, &info.Scenario, &info.Intensity,
			&info.CustomerCount, &info.AlertCount, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

// History returns a customer's stored assessments, newest first.
func (r *Repository) History(customerID string, limit int) ([]domain.Assessment, error) {
	rows, err := r.db.Query(
		"SELECT customer_id, risk_score, health_score, alert, recommended_offer, top_factors FROM assessments WHERE customer_id = ? ORDER BY created_at DESC LIMIT ?",
		customerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	var list []domain.Assessment
	for rows.Next() {
		var a domain.Assessment
		var alert int
		var factors string
		if err := rows.Scan(&a.CustomerID, &a.RiskScore, &a.HealthScore, &alert,
			&a.RecommendedOffer, &factors); err != nil {
			return nil, fmt.Errorf("failed to scan assessment row: %w", err)
		}
		a.Alert = alert == 1
		if err := json.Unmarshal([]byte(factors), &a.TopFactors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal factors: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
