package notifier

import (
	"fmt"
	"os"
	"time"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"

	"github.com/pfrederiksen/confsheet/internal/conference"
)

// TwitterNotifier posts new conferences to Twitter
type TwitterNotifier struct {
	client *twitter.Client
}

// NewTwitterNotifier creates a new Twitter notifier using environment variables
// Required environment variables:
// - TWITTER_API_KEY
// - TWITTER_API_SECRET
// - TWITTER_ACCESS_TOKEN
// - TWITTER_ACCESS_SECRET
func NewTwitterNotifier() (*TwitterNotifier, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials in environment variables")
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	client := twitter.NewClient(httpClient)

	return &TwitterNotifier{client: client}, nil
}

// Notify posts one tweet per record
func (n *TwitterNotifier) Notify(records []conference.Record) error {
	for i, rec := range records {
		tweet := formatTweet(rec)

		_, _, err := n.client.Statuses.Update(tweet, nil)
		if err != nil {
			return fmt.Errorf("failed to post tweet for %s: %w", rec.Title, err)
		}

		// Rate limiting: wait between tweets
		if i < len(records)-1 {
			time.Sleep(2 * time.Second)
		}
	}

	return nil
}

// formatTweet formats a conference record as a tweet
func formatTweet(rec conference.Record) string {
	tweet := "📢 New call for papers!\n\n"
	tweet += rec.Title + "\n"

	if deadline := displayDeadline(rec.SubmissionDeadline); deadline != "" {
		tweet += fmt.Sprintf("🗓 Submissions due %s\n", deadline)
	}
	if rec.ConferenceDates != "" {
		tweet += fmt.Sprintf("📅 %s\n", rec.ConferenceDates)
	}
	if rec.Location != "" {
		tweet += fmt.Sprintf("📍 %s\n", rec.Location)
	}
	if rec.SourceURL != "" {
		tweet += fmt.Sprintf("\n🔗 %s\n", rec.SourceURL)
	}
	tweet += "\n#CallForPapers #AcademicConferences"

	// Twitter limit is 280 characters
	if len(tweet) > 280 {
		// Truncate and add ellipsis
		tweet = tweet[:277] + "..."
	}

	return tweet
}

// displayDeadline renders a parseable deadline consistently and passes
// free-text deadlines through unchanged.
func displayDeadline(deadline string) string {
	if deadline == "" {
		return ""
	}
	if t := conference.ParseDeadline(deadline); !t.IsZero() {
		return t.Format("January 2, 2006")
	}
	return deadline
}
