package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/braxtondiggs/chansey-go/pkg/types"
)

// ScanReport is the JSON document a scan writes to disk.
type ScanReport struct {
	GeneratedAt time.Time                `json:"generatedAt"`
	Provider    string                   `json:"provider,omitempty"`
	Assets      []string                 `json:"assets,omitempty"`
	Results     []*types.AlgorithmResult `json:"results"`
}

// WriteJSONReport writes the scan report to path, creating parent
// directories as needed.
func WriteJSONReport(report *ScanReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scan report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write scan report: %w", err)
	}
	return nil
}

// ReadJSONReport loads a previously written scan report.
func ReadJSONReport(path string) (*ScanReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scan report: %w", err)
	}
	var report ScanReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse scan report: %w", err)
	}
	return &report, nil
}
