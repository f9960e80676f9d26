// Package conference provides the domain types and deduplication logic for
// academic conference announcements.
//
// The conference package defines the raw candidate shape produced by source
// scrapers and the canonical record shape kept in the spreadsheet store. Its
// core is a two-stage deduplication engine: entries sharing a normalized
// start date and location merge first, and entries left over merge by fuzzy
// title similarity with transitive closure. Each merged group collapses to a
// single representative whose missing fields are backfilled from the other
// members.
package conference
