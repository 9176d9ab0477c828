package customers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aristath/stresswatch/internal/domain"
)

// Schema creates the customers table. Records are stored as JSON blobs: the
// nested schema is the interchange format and field names are load-bearing.
const Schema = `
CREATE TABLE IF NOT EXISTS customers (
	customer_id TEXT PRIMARY KEY,
	data        TEXT NOT NULL,
	updated_at  INTEGER NOT NULL
);
`

// Repository persists raw customer records.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a customer repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SaveAll upserts a batch of records in one transaction.
func (r *Repository) SaveAll(records []domain.CustomerRecord) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT OR REPLACE INTO customers (customer_id, data, updated_at) VALUES (?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for i := range records {
		blob, err := json.Marshal(records[i])
		if err != nil {
			return fmt.Errorf("failed to marshal customer %s: %w", records[i].CustomerID, err)
		}
		if _, err := stmt.Exec(records[i].CustomerID, string(blob), now); err != nil {
			return fmt.Errorf("failed to store customer %s: %w", records[i].CustomerID, err)
		}
	}

	return tx.Commit()
}

// GetAll returns every stored record ordered by customer id.
func (r *Repository) GetAll() ([]domain.CustomerRecord, error) {
	rows, err := r.db.Query("SELECT data FROM customers ORDER BY customer_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var records []domain.CustomerRecord
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("failed to scan customer row: %w", err)
		}
		var rec domain.CustomerRecord
		if err := json.Unmarshal([]byte(blob), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal customer record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns a single record, or nil when the customer is unknown.
func (r *Repository) Get(customerID string) (*domain.CustomerRecord, error) {
	var blob string
	err := r.db.QueryRow(
		"SELECT data FROM customers WHERE customer_id = ?", customerID,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query customer %s: %w", customerID, err)
	}

	var rec domain.CustomerRecord
	if err := json.Unmarshal([]byte(blob), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer record: %w", err)
	}
	return &rec, nil
}

// Count returns the number of stored records.
func (r *Repository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM customers").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return n, nil
}
