// Package customers loads and persists raw customer records.
package customers

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aristath/stresswatch/internal/domain"
)

// LoadFromFile reads a JSON array of customer records from disk. The file
// carries the nested record schema; unknown fields are ignored.
func LoadFromFile(path string) ([]domain.CustomerRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read customer data file: %w", err)
	}

	var records []domain.CustomerRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse customer data file %s: %w", path, err)
	}
	return records, nil
}
