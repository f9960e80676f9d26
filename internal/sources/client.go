package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
)

const (
	// UserAgent is a desktop browser string; the announcement sites serve
	// reduced or blocked pages to obvious bots.
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// Timeout bounds a single request attempt.
	Timeout = 30 * time.Second

	// maxRetries bounds the retry loop for transient failures.
	maxRetries = 3
)

// ErrNotFound reports a 404 response. Paginating sources treat it as the
// end of the listing rather than a failure.
var ErrNotFound = errors.New("page not found")

// Client is the HTTP client every source shares. Transport errors and
// throttling responses are retried with exponential backoff; anything else
// fails immediately.
type Client struct {
	http          *http.Client
	retryInterval time.Duration
}

// NewClient creates a client with the standard timeout and retry policy.
func NewClient() *Client {
	return &Client{
		http:          &http.Client{Timeout: Timeout},
		retryInterval: 500 * time.Millisecond,
	}
}

// Get fetches url and returns the response body. Transport errors, 429 and
// 5xx responses are retried up to maxRetries times; a 404 returns
// ErrNotFound.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", UserAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("fetching page: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(ErrNotFound)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("retryable status %d for %s", resp.StatusCode, url)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return body, nil
}

// Document fetches url and parses the body as HTML.
func (c *Client) Document(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}
