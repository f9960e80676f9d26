// Package store persists conference records to a styled two-sheet xlsx
// workbook, the artifact the operator actually reads.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pfrederiksen/confsheet/internal/conference"
)

const (
	// ActiveSheet holds records whose call for papers is still open.
	ActiveSheet = "Conferences"

	// PastSheet holds recently elapsed records kept for reference.
	PastSheet = "Past Conferences"
)

const (
	activeHeaderColor = "2F5496"
	pastHeaderColor   = "7F7F7F"
)

var columns = []string{
	"Title", "Submission Deadline", "Conference Dates",
	"Location", "Keynote Speakers", "Description", "Topics", "URL",
}

var columnWidths = []float64{45, 22, 28, 35, 40, 60, 50, 55}

// Store reads and writes one workbook path.
type Store struct {
	path string
}

// New creates a store for path. The file does not have to exist yet.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the workbook location.
func (s *Store) Path() string { return s.path }

// Load reads both sheets back into records. A missing file is an empty
// store, not an error. Rows are matched to fields by header name, so
// manual column reordering in the workbook survives a reload.
func (s *Store) Load() (active, past []conference.Record, err error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	active, err = readSheet(f, ActiveSheet)
	if err != nil {
		return nil, nil, err
	}
	past, err = readSheet(f, PastSheet)
	if err != nil {
		return nil, nil, err
	}
	return active, past, nil
}

// Save writes both partitions, replacing the workbook wholesale.
func (s *Store) Save(active, past []conference.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ActiveSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(PastSheet); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}

	if err := writeSheet(f, ActiveSheet, active, activeHeaderColor); err != nil {
		return err
	}
	if err := writeSheet(f, PastSheet, past, pastHeaderColor); err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func readSheet(f *excelize.File, sheet string) ([]conference.Record, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	headers := rows[0]
	var records []conference.Record
	for _, row := range rows[1:] {
		fields := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(row) {
				fields[strings.TrimSpace(header)] = strings.TrimSpace(row[i])
			}
		}

		rec := conference.Record{
			Title:              fields["Title"],
			SubmissionDeadline: fields["Submission Deadline"],
			ConferenceDates:    fields["Conference Dates"],
			Location:           fields["Location"],
			Speakers:           fields["Keynote Speakers"],
			Description:        fields["Description"],
			Topics:             splitTopics(fields["Topics"]),
			SourceURL:          fields["URL"],
		}
		if rec.Title == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func writeSheet(f *excelize.File, sheet string, records []conference.Record, headerColor string) error {
	thin := []excelize.Border{
		{Type: "left", Style: 1, Color: "000000"},
		{Type: "right", Style: 1, Color: "000000"},
		{Type: "top", Style: 1, Color: "000000"},
		{Type: "bottom", Style: 1, Color: "000000"},
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerColor}},
		Font:      &excelize.Font{Family: "Calibri", Size: 11, Bold: true, Color: "FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thin,
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	bodyStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Calibri", Size: 10},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		Border:    thin,
	})
	if err != nil {
		return fmt.Errorf("creating body style: %w", err)
	}

	for i, header := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	lastCol, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for r, rec := range records {
		values := []string{
			rec.Title,
			displayDeadline(rec),
			rec.ConferenceDates,
			rec.Location,
			rec.Speakers,
			rec.Description,
			strings.Join(rec.Topics, ", "),
			rec.SourceURL,
		}
		for c, value := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("writing row: %w", err)
			}
		}
	}
	if len(records) > 0 {
		if err := f.SetCellStyle(sheet, "A2", fmt.Sprintf("%s%d", lastCol, len(records)+1), bodyStyle); err != nil {
			return fmt.Errorf("styling rows: %w", err)
		}
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("setting column width: %w", err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header row: %w", err)
	}
	return nil
}

// displayDeadline renders a parseable deadline in one consistent format
// and leaves free text untouched.
func displayDeadline(rec conference.Record) string {
	if d := conference.ParseDeadline(rec.SubmissionDeadline); !d.IsZero() {
		return d.Format("January 2, 2006")
	}
	return rec.SubmissionDeadline
}

func splitTopics(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	topics := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			topics = append(topics, part)
		}
	}
	if len(topics) == 0 {
		return nil
	}
	return topics
}
