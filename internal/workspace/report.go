package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ClassRow is one per-class line of the evaluation summary.
type ClassRow struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report is the JSON artifact written after a run.
type Report struct {
	Mode          string         `json:"mode"`
	Input         string         `json:"input"`
	Config        any            `json:"config,omitempty"`
	Accuracy      float64        `json:"accuracy"`
	TrainSize     int            `json:"train_size"`
	TestSize      int            `json:"test_size"`
	Dims          int            `json:"dims"`
	BlockDims     map[string]int `json:"block_dims,omitempty"`
	Classes       []ClassRow     `json:"classes"`
	DocPrediction string         `json:"doc_prediction,omitempty"`
	StartedAt     time.Time      `json:"started_at"`
	DurationMs    int64          `json:"duration_ms"`
}

// SaveReport writes the evaluation summary to path as indented JSON.
func SaveReport(path string, report Report) error {
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
