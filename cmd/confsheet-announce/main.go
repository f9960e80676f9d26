package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/pfrederiksen/confsheet/internal/conference"
	"github.com/pfrederiksen/confsheet/internal/notifier"
	"github.com/pfrederiksen/confsheet/internal/pipeline"
)

var (
	reportFile   = flag.String("report", "", "Path to run report JSON (or read from stdin)")
	dryRun       = flag.Bool("dry-run", false, "Print tweets without posting")
	maxTweets    = flag.Int("max-tweets", 10, "Maximum number of tweets to post")
	sourceFilter = flag.String("source", "", "Only announce conferences from this source")
	version      = "dev"
)

func main() {
	flag.Parse()

	// Read the run report from file or stdin
	var report pipeline.RunReport
	if *reportFile != "" {
		var err error
		report, err = pipeline.ReadReport(*reportFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading report: %v\n", err)
			os.Exit(1)
		}
	} else {
		decoder := json.NewDecoder(os.Stdin)
		if err := decoder.Decode(&report); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing JSON: %v\n", err)
			os.Exit(1)
		}
	}

	if len(report.NewRecords) == 0 {
		fmt.Println("No new conferences to announce")
		os.Exit(0)
	}

	// Filter records by source if specified
	records := report.NewRecords
	if *sourceFilter != "" {
		filtered := make([]conference.Record, 0)
		for _, rec := range records {
			if rec.Source == *sourceFilter {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	// Limit number of tweets
	if len(records) > *maxTweets {
		records = records[:*maxTweets]
	}

	if len(records) == 0 {
		fmt.Println("No conferences match criteria")
		os.Exit(0)
	}

	// Initialize Twitter client
	var tw notifier.Notifier
	if *dryRun {
		tw = notifier.NewDryRunNotifier()
		fmt.Printf("DRY RUN MODE - Would announce %d conferences:\n\n", len(records))
	} else {
		client, err := notifier.NewTwitterNotifier()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing Twitter client: %v\n", err)
			os.Exit(1)
		}
		tw = client
	}

	// Post tweets
	if err := tw.Notify(records); err != nil {
		fmt.Fprintf(os.Stderr, "Error posting tweets: %v\n", err)
		os.Exit(1)
	}

	if !*dryRun {
		fmt.Printf("Successfully posted %d tweets\n", len(records))
	}
}
