// Package calendar exports upcoming submission deadlines as an iCalendar
// file, one all-day event per deadline.
package calendar

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/confsheet/internal/conference"
)

// Generate builds an iCalendar document with one all-day event per record
// whose submission deadline parses. Records without a usable deadline are
// skipped; when nothing is eligible the result is empty.
func Generate(records []conference.Record, name string) string {
	stamp := formatICSTime(time.Now().UTC())

	var events []string
	for _, rec := range records {
		deadline := conference.ParseDeadline(rec.SubmissionDeadline)
		if deadline.IsZero() {
			continue
		}
		events = append(events, eventBlock(rec, deadline, stamp))
	}
	if len(events) == 0 {
		return ""
	}

	var ics strings.Builder
	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//confsheet//confsheet//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	if name != "" {
		ics.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeICS(name)))
	}
	for _, evt := range events {
		ics.WriteString(evt)
	}
	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String()
}

// eventBlock renders one deadline as an all-day VEVENT. All-day events use
// date values with an exclusive end, so DTEND is the following day.
func eventBlock(rec conference.Record, deadline time.Time, stamp string) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VEVENT\r\n")
	ics.WriteString(fmt.Sprintf("UID:%s@confsheet\r\n", eventUID(rec)))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", stamp))
	ics.WriteString(fmt.Sprintf("DTSTART;VALUE=DATE:%s\r\n", formatICSDate(deadline)))
	ics.WriteString(fmt.Sprintf("DTEND;VALUE=DATE:%s\r\n", formatICSDate(deadline.AddDate(0, 0, 1))))

	summary := fmt.Sprintf("CFP deadline: %s", rec.Title)
	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(summary)))

	var details []string
	if rec.ConferenceDates != "" {
		details = append(details, fmt.Sprintf("Conference dates: %s", rec.ConferenceDates))
	}
	if rec.Location != "" {
		details = append(details, fmt.Sprintf("Location: %s", rec.Location))
	}
	if rec.SourceURL != "" {
		details = append(details, fmt.Sprintf("Announcement: %s", rec.SourceURL))
	}
	if len(details) > 0 {
		ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(strings.Join(details, "\n"))))
	}

	if rec.Location != "" {
		ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(rec.Location)))
	}
	if rec.SourceURL != "" {
		ics.WriteString(fmt.Sprintf("URL:%s\r\n", rec.SourceURL))
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	// A deadline marker should not block busy time.
	ics.WriteString("TRANSP:TRANSPARENT\r\n")
	ics.WriteString("END:VEVENT\r\n")

	return ics.String()
}

// eventUID derives a stable identifier from the record's URL so re-exports
// update events instead of duplicating them. Falls back to the title when a
// record has no URL.
func eventUID(rec conference.Record) string {
	key := rec.SourceURL
	if key == "" {
		key = rec.Title
	}
	sum := sha1.Sum([]byte(key))
	return fmt.Sprintf("%x", sum[:6])
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// formatICSDate formats a time.Time as an iCalendar all-day date string
func formatICSDate(t time.Time) string {
	return t.UTC().Format("20060102")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
