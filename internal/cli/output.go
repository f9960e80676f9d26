package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/confsheet/internal/conference"
	"github.com/pfrederiksen/confsheet/internal/pipeline"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt   time.Time              `json:"checked_at"`
	DataFile    string                 `json:"data_file"`
	Sources     []pipeline.SourceCount `json:"sources"`
	Stages      pipeline.StageCounts   `json:"stages"`
	NewRecords  []conference.Record    `json:"new_records"`
	NewCount    int                    `json:"new_count"`
	ActiveCount int                    `json:"active_count"`
	PastCount   int                    `json:"past_count"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	for _, src := range result.Sources {
		if src.Error != "" {
			fmt.Fprintf(w, "WARNING: source %s failed: %s\n", src.Source, src.Error)
		}
	}

	if result.NewCount == 0 {
		fmt.Fprintln(w, "No new conferences found.")
		return nil
	}

	for _, rec := range result.NewRecords {
		fmt.Fprintf(w, "NEW: %s\n", rec.Title)
		if verbose {
			if rec.SubmissionDeadline != "" {
				fmt.Fprintf(w, "     Deadline: %s\n", rec.SubmissionDeadline)
			}
			if rec.ConferenceDates != "" {
				fmt.Fprintf(w, "     Dates: %s\n", rec.ConferenceDates)
			}
			if rec.Location != "" {
				fmt.Fprintf(w, "     Location: %s\n", rec.Location)
			}
			fmt.Fprintf(w, "     URL: %s\n", rec.SourceURL)
		}
	}
	fmt.Fprintf(w, "\nTotal: %d new conferences\n", result.NewCount)

	return nil
}
