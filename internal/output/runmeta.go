package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/khanhnv2901/domainscan/internal/shared/constants"
)

// ScannerTiming brackets one scanner's portion of the run.
type ScannerTiming struct {
	Start    string  `json:"start"`
	End      string  `json:"end"`
	Duration float64 `json:"duration"`
}

// RunMetadata is written once per run as meta.json.
type RunMetadata struct {
	StartTime string                   `json:"start_time"`
	EndTime   string                   `json:"end_time"`
	Duration  float64                  `json:"duration"`
	Durations map[string]ScannerTiming `json:"durations"`
	Command   string                   `json:"command"`
	ScanUUID  string                   `json:"scan_uuid"`
}

// WriteRunMetadata persists the run record to <resultsDir>/meta.json.
func WriteRunMetadata(resultsDir string, rm RunMetadata) error {
	raw, err := json.MarshalIndent(rm, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run metadata: %w", err)
	}
	path := filepath.Join(resultsDir, "meta.json")
	if err := os.WriteFile(path, raw, constants.DefaultFilePerm); err != nil {
		return fmt.Errorf("write run metadata: %w", err)
	}
	return nil
}
