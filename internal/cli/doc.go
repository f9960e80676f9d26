// Package cli implements the command-line interface for confsheet.
//
// The cli package provides the Cobra-based CLI that drives one aggregation
// run: it loads configuration, fetches announcements from the configured
// sources, deduplicates and classifies them, saves the workbook and reports
// newly found conferences as text or JSON. Optional flags additionally write
// a JSON run report and an iCalendar file of upcoming deadlines.
package cli
