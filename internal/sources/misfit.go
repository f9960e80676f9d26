package sources

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/confsheet/internal/conference"
)

// Post permalinks are date-prefixed: /2026/03/12/some-conference/.
var postPathRe = regexp.MustCompile(`^/\d{4}/\d{2}/\d{2}/[\w-]+/?$`)

// Post bodies are free-form prose, so dates and locations are pulled out
// with loose patterns. Earlier patterns win.
var (
	postDateRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Date|Conference date|When)[:\s]*(.+?\d{4})`),
		regexp.MustCompile(`(?i)(\w+ \d{1,2}[-–]\d{1,2},?\s*\d{4})`),
		regexp.MustCompile(`(?i)(\w+ \d{1,2},?\s*\d{4}\s*[-–]\s*\w+ \d{1,2},?\s*\d{4})`),
		regexp.MustCompile(`(?i)(\d{1,2}[-–]\d{1,2}\s+\w+\s+\d{4})`),
	}
	postLocationRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Location|Venue|Where|Place)[:\s]*(.+?)(?:\n|$)`),
		regexp.MustCompile(`(?i)(?:held (?:in|at))\s+(.+?)(?:\n|\.|$)`),
	}
)

const maxLocationLen = 100

// Misfit scrapes the conferences category of theeconomicmisfit.com, a
// WordPress blog. Listing pages only link to posts; every field comes from
// the post body itself.
type Misfit struct {
	siteURL     string
	listPath    string
	maxPages    int
	pageDelay   time.Duration
	detailDelay time.Duration
}

// NewMisfit creates the adapter with production settings.
func NewMisfit() *Misfit {
	return &Misfit{
		siteURL:     "https://theeconomicmisfit.com",
		listPath:    "/category/conferences/",
		maxPages:    50,
		pageDelay:   time.Second,
		detailDelay: 500 * time.Millisecond,
	}
}

// Name implements Source.
func (s *Misfit) Name() string { return "misfit" }

// Fetch collects post links from the paginated category listing, then
// loads each post that is not already known. Posts without a title or
// body text are skipped.
func (s *Misfit) Fetch(ctx context.Context, client *Client, known conference.KnownURLSet) ([]conference.RawCandidate, error) {
	links, err := s.postLinks(ctx, client, known)
	if err != nil {
		return nil, err
	}

	var candidates []conference.RawCandidate
	for _, link := range links {
		if known.Contains(link) {
			continue
		}
		if len(candidates) > 0 {
			pause(ctx, s.detailDelay)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		title, text, err := s.postText(ctx, client, link)
		if err != nil || title == "" || text == "" {
			continue
		}
		candidates = append(candidates, conference.RawCandidate{
			Title:           title,
			URL:             link,
			Source:          s.Name(),
			PageText:        truncate(text, pageTextLimit),
			ConferenceDates: extractDates(text),
			Location:        extractLocation(text),
		})
	}
	return candidates, nil
}

// postLinks walks the paginated listing until a page 404s, links to no
// posts, or links only to already-known posts.
func (s *Misfit) postLinks(ctx context.Context, client *Client, known conference.KnownURLSet) ([]string, error) {
	site, err := url.Parse(s.siteURL)
	if err != nil {
		return nil, fmt.Errorf("parsing site URL: %w", err)
	}

	seen := make(map[string]struct{})
	var links []string

	for page := 1; page <= s.maxPages; page++ {
		if page > 1 {
			pause(ctx, s.pageDelay)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageURL := s.siteURL + s.listPath
		if page > 1 {
			pageURL = fmt.Sprintf("%s%spage/%d/", s.siteURL, s.listPath, page)
		}
		doc, err := client.Document(ctx, pageURL)
		if errors.Is(err, ErrNotFound) {
			break
		}
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("listing page %d: %w", page, err)
			}
			break
		}

		pageLinks := s.parseListing(doc, site)
		if len(pageLinks) == 0 {
			break
		}

		allKnown := true
		for _, link := range pageLinks {
			if !known.Contains(link) {
				allKnown = false
			}
			if _, dup := seen[link]; dup {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)
		}
		if len(known) > 0 && allKnown {
			break
		}
	}
	return links, nil
}

// parseListing collects post permalinks from a listing page. Hrefs are
// resolved against the site origin so that relative links count too, and
// links to other hosts are dropped.
func (s *Misfit) parseListing(doc *goquery.Document, site *url.URL) []string {
	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := site.ResolveReference(ref)
		if abs.Scheme != site.Scheme || abs.Host != site.Host {
			return
		}
		if !postPathRe.MatchString(abs.Path) {
			return
		}
		link := abs.String()
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})
	return links
}

// postText fetches a post and returns its title and flattened body text.
func (s *Misfit) postText(ctx context.Context, client *Client, link string) (string, string, error) {
	doc, err := client.Document(ctx, link)
	if err != nil {
		return "", "", err
	}

	titleTag := doc.Find("h1").First()
	if titleTag.Length() == 0 {
		titleTag = doc.Find("h2[class*=title]").First()
	}
	title := strings.TrimSpace(titleTag.Text())

	content := doc.Find("div[class*=entry-content]").First()
	if content.Length() == 0 {
		content = doc.Find("div[class*=post-content]").First()
	}
	if content.Length() == 0 {
		content = doc.Find("article").First()
	}
	if content.Length() == 0 {
		return title, "", nil
	}
	return title, selectionText(content, "\n"), nil
}

func extractDates(text string) string {
	for _, re := range postDateRes {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func extractLocation(text string) string {
	for _, re := range postLocationRes {
		if m := re.FindStringSubmatch(text); m != nil {
			loc := strings.TrimSpace(m[1])
			if i := strings.IndexByte(loc, '\n'); i >= 0 {
				loc = loc[:i]
			}
			return truncate(loc, maxLocationLen)
		}
	}
	return ""
}
