// Package notifier posts announcements for newly recorded conferences.
//
// The notifier package supports posting announcements to various platforms
// including Twitter. It handles OAuth authentication, pacing between posts
// and message formatting; the dry-run implementation prints what would be
// posted so a run can be previewed without credentials.
package notifier
