package sources

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/confsheet/internal/conference"
)

var (
	// Conference detail links look like /conference/some-title-12345.
	conferenceLinkRe = regexp.MustCompile(`^/conference/[\w-]+-\d+$`)

	// Listing entries render dates as "Between 15 May and 16 May in Barcelona".
	listingDatesRe = regexp.MustCompile(`Between\s+(.+?)\s+and\s+(.+?)(?:\s+in\s+|$)`)
)

// Inomics scrapes the conference listings on inomics.com. The listing pages
// carry title, dates and location; detail pages supply the text handed to
// the classifier.
type Inomics struct {
	siteURL     string
	listPath    string
	maxPages    int
	pageDelay   time.Duration
	detailDelay time.Duration
}

// NewInomics creates the adapter with production settings.
func NewInomics() *Inomics {
	return &Inomics{
		siteURL:     "https://inomics.com",
		listPath:    "/top/conferences",
		maxPages:    50,
		pageDelay:   time.Second,
		detailDelay: 500 * time.Millisecond,
	}
}

// Name implements Source.
func (s *Inomics) Name() string { return "inomics" }

// Fetch paginates the listing, then loads detail pages for entries whose
// URL is not already known. A failed detail fetch degrades to an empty
// page text instead of dropping the entry.
func (s *Inomics) Fetch(ctx context.Context, client *Client, known conference.KnownURLSet) ([]conference.RawCandidate, error) {
	entries, err := s.listingEntries(ctx, client, known)
	if err != nil {
		return nil, err
	}

	var candidates []conference.RawCandidate
	for _, entry := range entries {
		if known.Contains(entry.url) {
			continue
		}
		if len(candidates) > 0 {
			pause(ctx, s.detailDelay)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := s.detailText(ctx, client, entry.url)
		if err != nil {
			text = ""
		}
		candidates = append(candidates, conference.RawCandidate{
			Title:           entry.title,
			URL:             entry.url,
			Source:          s.Name(),
			PageText:        truncate(text, pageTextLimit),
			ConferenceDates: entry.dates,
			Location:        entry.location,
		})
	}
	return candidates, nil
}

type listingEntry struct {
	title    string
	url      string
	dates    string
	location string
}

// listingEntries walks the paginated listing until a page 404s, parses
// empty, repeats itself, or contains only already-known URLs.
func (s *Inomics) listingEntries(ctx context.Context, client *Client, known conference.KnownURLSet) ([]listingEntry, error) {
	seen := make(map[string]struct{})
	var all []listingEntry

	for page := 0; page < s.maxPages; page++ {
		if page > 0 {
			pause(ctx, s.pageDelay)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		url := fmt.Sprintf("%s%s?page=%d", s.siteURL, s.listPath, page)
		doc, err := client.Document(ctx, url)
		if errors.Is(err, ErrNotFound) {
			break
		}
		if err != nil {
			if page == 0 {
				return nil, fmt.Errorf("listing page %d: %w", page, err)
			}
			// Later pages failing is not fatal; keep what we have.
			break
		}

		pageEntries := s.parseListing(doc)
		if len(pageEntries) == 0 {
			break
		}

		newCount := 0
		allKnown := true
		for _, entry := range pageEntries {
			if !known.Contains(entry.url) {
				allKnown = false
			}
			if _, dup := seen[entry.url]; dup {
				continue
			}
			seen[entry.url] = struct{}{}
			all = append(all, entry)
			newCount++
		}
		if newCount == 0 {
			break
		}
		if len(known) > 0 && allKnown {
			break
		}
	}
	return all, nil
}

// parseListing extracts conference entries from a single listing page.
// Entries are anchors matching the detail-link pattern that wrap an h2;
// plain navigation links to the same paths are skipped.
func (s *Inomics) parseListing(doc *goquery.Document) []listingEntry {
	var entries []listingEntry
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !conferenceLinkRe.MatchString(href) {
			return
		}
		h2 := a.Find("h2")
		if h2.Length() == 0 {
			return
		}

		title := strings.TrimSpace(h2.First().Text())
		if title == "" {
			return
		}

		entry := listingEntry{
			title: title,
			url:   s.siteURL + href,
		}
		if info := a.Find("span.informations"); info.Length() > 0 {
			if m := listingDatesRe.FindStringSubmatch(selectionText(info, " ")); m != nil {
				entry.dates = strings.TrimSpace(m[1]) + " - " + strings.TrimSpace(m[2])
			}
			entry.location = strings.TrimSpace(info.Find("span.location").First().Text())
		}
		entries = append(entries, entry)
	})
	return entries
}

// detailText collects the labelled facts from the post-details block and
// the main body text of a detail page.
func (s *Inomics) detailText(ctx context.Context, client *Client, url string) (string, error) {
	doc, err := client.Document(ctx, url)
	if err != nil {
		return "", err
	}

	var parts []string
	doc.Find("div.post-details").First().ChildrenFiltered("div").Each(func(_ int, div *goquery.Selection) {
		label := div.Find("span.detail-title, span.detail-attendance").First()
		value := div.Find("h4").First()
		if label.Length() == 0 || value.Length() == 0 {
			return
		}
		parts = append(parts, strings.TrimSpace(label.Text())+": "+strings.TrimSpace(value.Text()))
	})

	if body := doc.Find("div[class*=post-body]").First(); body.Length() > 0 {
		if text := selectionText(body, "\n"); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}
