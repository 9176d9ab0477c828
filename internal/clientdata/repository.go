// Package clientdata provides persistent caching for derived data and
// external API responses. Entries carry an expiration timestamp for
// cache-first behavior: JSON blobs for API payloads, msgpack for the
// compact feature snapshots.
package clientdata

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// AllTables lists all tables in cache.db for cleanup operations.
var AllTables = []string{
	"grok_insights",
	"feature_snapshots",
}

// validTables is a set for O(1) table name validation.
var validTables = func() map[string]bool {
	m := make(map[string]bool, len(AllTables))
	for _, t := range AllTables {
		m[t] = true
	}
	return m
}()

// Schema creates the cache tables. Keys are customer ids for both tables.
const Schema = `
CREATE TABLE IF NOT EXISTS grok_insights (customer_id TEXT PRIMARY KEY, data TEXT NOT NULL, expires_at INTEGER NOT NULL);
CREATE TABLE IF NOT EXISTS feature_snapshots (customer_id TEXT PRIMARY KEY, data BLOB NOT NULL, expires_at INTEGER NOT NULL);
CREATE INDEX IF NOT EXISTS idx_grok_insights_expires ON grok_insights(expires_at);
CREATE INDEX IF NOT EXISTS idx_feature_snapshots_expires ON feature_snapshots(expires_at);
`

// Repository provides cache operations over cache.db.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new cache repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// validateTable ensures the table name is in our allowed list.
// This prevents SQL injection through table names.
func validateTable(table string) error {
	if !validTables[table] {
		return fmt.Errorf("invalid table name: %s", table)
	}
	return nil
}

// StoreJSON saves data as a JSON blob with expiration = now + ttl.
func (r *Repository) StoreJSON(table, key string, data interface{}, ttl time.Duration) error {
	blob, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}
	return r.store(table, key, blob, ttl)
}

// StoreMsgpack saves data msgpack-encoded with expiration = now + ttl.
func (r *Repository) StoreMsgpack(table, key string, data interface{}, ttl time.Duration) error {
	blob, err := msgpack.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}
	return r.store(table, key, blob, ttl)
}

func (r *Repository) store(table, key string, blob []byte, ttl time.Duration) error {
	if err := validateTable(table); err != nil {
		return err
	}

	expiresAt := time.Now().Add(ttl).Unix()

	// INSERT OR REPLACE for upsert behavior
	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (customer_id, data, expires_at) VALUES (?, ?, ?)",
		table,
	)
	if _, err := r.db.Exec(query, key, blob, expiresAt); err != nil {
		return fmt.Errorf("failed to store data in %s: %w", table, err)
	}
	return nil
}

// GetIfFresh returns the raw blob only if expires_at > now.
// Returns nil, nil when the key doesn't exist or the entry is expired.
func (r *Repository) GetIfFresh(table, key string) ([]byte, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT data FROM %s WHERE customer_id = ? AND expires_at > ?",
		table,
	)

	var blob []byte
	err := r.db.QueryRow(query, key, time.Now().Unix()).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}
	return blob, nil
}

// GetJSONIfFresh unmarshals a fresh JSON entry into dst.
// Returns false when no fresh entry exists.
func (r *Repository) GetJSONIfFresh(table, key string, dst interface{}) (bool, error) {
	blob, err := r.GetIfFresh(table, key)
	if err != nil || blob == nil {
		return false, err
	}
	if err := json.Unmarshal(blob, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached data: %w", err)
	}
	return true, nil
}

// GetMsgpackIfFresh decodes a fresh msgpack entry into dst.
// Returns false when no fresh entry exists.
func (r *Repository) GetMsgpackIfFresh(table, key string, dst interface{}) (bool, error) {
	blob, err := r.GetIfFresh(table, key)
	if err != nil || blob == nil {
		return false, err
	}
	if err := msgpack.Unmarshal(blob, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached data: %w", err)
	}
	return true, nil
}

// CleanupExpired deletes expired rows from every cache table and returns the
// total number of rows removed.
func (r *Repository) CleanupExpired() (int64, error) {
	now := time.Now().Unix()
	var total int64

	for _, table := range AllTables {
		res, err := r.db.Exec(
			fmt.Sprintf("DELETE FROM %s WHERE expires_at <= ?", table), now,
		)
		if err != nil {
			return total, fmt.Errorf("failed to clean %s: %w", table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}
	return total, nil
}
