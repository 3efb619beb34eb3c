package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nao1215/catalogcrawl/internal/model"
)

// Saver persists the result of one combination.
type Saver interface {
	Save(ctx context.Context, runID string, combo model.Combination, result model.CrawlResult) error
}

// Deleter removes the result of one combination. Removing a result that
// does not exist is not an error.
type Deleter interface {
	Delete(ctx context.Context, runID string, combo model.Combination) error
}

// RunInfo summarizes the results stored for one run.
type RunInfo struct {
	RunID        string
	Combinations int
	Courses      int
	Sections     int
}

// encodeResult returns the JSON document stored for a result.
func encodeResult(result model.CrawlResult) ([]byte, error) {
	if result == nil {
		result = model.CrawlResult{}
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return data, nil
}

// decodeResult parses a stored JSON document.
func decodeResult(data []byte) (model.CrawlResult, error) {
	var result model.CrawlResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return result, nil
}
