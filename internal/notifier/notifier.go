package notifier

import (
	"github.com/pfrederiksen/confsheet/internal/conference"
)

// Notifier defines the interface for announcing new conference records
type Notifier interface {
	// Notify posts one announcement per record
	Notify(records []conference.Record) error
}
