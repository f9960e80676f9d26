package notifier

import (
	"fmt"

	"github.com/pfrederiksen/confsheet/internal/conference"
)

// DryRunNotifier prints what would be tweeted without actually posting
type DryRunNotifier struct{}

// NewDryRunNotifier creates a new dry-run notifier
func NewDryRunNotifier() *DryRunNotifier {
	return &DryRunNotifier{}
}

// Notify prints the tweets that would be posted
func (n *DryRunNotifier) Notify(records []conference.Record) error {
	for i, rec := range records {
		tweet := formatTweet(rec)
		fmt.Printf("--- Tweet %d/%d ---\n", i+1, len(records))
		fmt.Println(tweet)
		fmt.Printf("\n(Length: %d characters)\n\n", len(tweet))
	}
	return nil
}
