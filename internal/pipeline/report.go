package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pfrederiksen/confsheet/internal/conference"
)

// RunReport is the JSON artifact of one run. The announcement tool reads it
// to find what this run added.
type RunReport struct {
	Timestamp  time.Time           `json:"timestamp"`
	Sources    []SourceCount       `json:"sources"`
	Stages     StageCounts         `json:"stages"`
	NewRecords []conference.Record `json:"new_records"`
	Exclusions []Exclusion         `json:"exclusions,omitempty"`
}

// SourceCount is one adapter's contribution to the run.
type SourceCount struct {
	Source  string `json:"source"`
	Fetched int    `json:"fetched"`
	Error   string `json:"error,omitempty"`
}

// StageCounts carries the per-stage counters the run logs at the end.
type StageCounts struct {
	Fetched      int `json:"fetched"`
	KnownSkipped int `json:"known_skipped"`
	NewUnique    int `json:"new_unique"`
	Relevant     int `json:"relevant"`
	Classified   int `json:"classified"`
	Excluded     int `json:"excluded"`
	Active       int `json:"active"`
	Past         int `json:"past"`
}

// Exclusion records why a candidate was dropped before persistence.
type Exclusion struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

func (r *RunReport) exclude(title, reason string) {
	r.Exclusions = append(r.Exclusions, Exclusion{Title: title, Reason: reason})
}

// WriteReport writes the report as indented JSON, creating the directory if
// needed.
func WriteReport(path string, report RunReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// ReadReport loads a report written by an earlier run.
func ReadReport(path string) (RunReport, error) {
	var report RunReport
	data, err := os.ReadFile(path)
	if err != nil {
		return report, fmt.Errorf("reading report: %w", err)
	}
	if err := json.Unmarshal(data, &report); err != nil {
		return report, fmt.Errorf("parsing report: %w", err)
	}
	return report, nil
}
