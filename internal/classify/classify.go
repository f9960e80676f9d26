// Package classify calls an OpenAI-compatible chat completions API to
// judge conference relevance and extract structured announcement fields
// from scraped page text.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	defaultTimeout = 120 * time.Second
)

const (
	// extractTextLimit caps the page text sent with a full extraction call.
	extractTextLimit = 4000

	// relevanceTextLimit caps the excerpt sent with the cheap relevance call.
	relevanceTextLimit = 1500

	// callPause spaces out successive API calls.
	callPause = 500 * time.Millisecond
)

// Config holds the settings for the classifier.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL. Can point at any compatible endpoint.
	BaseURL string

	// Model is the chat model to use.
	Model string

	// Timeout is the per-request timeout.
	Timeout time.Duration
}

// Classifier talks to the chat completions endpoint. Calls are sequential
// and paced; there is no batching.
type Classifier struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	pause   time.Duration
	called  bool
}

// Extraction is the structured result of a full extraction call. All
// fields are free-text exactly as the model returned them; date parsing
// happens downstream.
type Extraction struct {
	SubmissionDeadline string `json:"submission_deadline"`
	DeadlineDate       string `json:"deadline_date"`
	ConferenceDates    string `json:"conference_dates"`
	Location           string `json:"location"`
	KeynoteSpeakers    string `json:"keynote_speakers"`
	Description        string `json:"description"`
	Topics             string `json:"topics"`
}

// Relevance is the verdict of the relevance call.
type Relevance struct {
	Relevant       bool
	Reason         string
	DetectedTopics string
}

// chatRequest is the /chat/completions request format. Temperature is
// always serialized so extraction runs at 0.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []chatMsg `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the /chat/completions response format.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// New creates a classifier.
func New(cfg Config) (*Classifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("classify: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Classifier{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		pause:   callPause,
	}, nil
}

// ModelName returns the model in use.
func (c *Classifier) ModelName() string {
	return c.model
}

const extractSystem = "You extract structured data from conference announcements. Always respond with valid JSON only, no markdown fences."

const extractPromptFmt = `Extract the following fields from this conference announcement page.
Return a JSON object with exactly these keys. Use empty string "" if a field is not found.

- "submission_deadline": The submission/paper deadline as a human-readable string (e.g. "March 30, 2026"). If the deadline has passed, is "expired", "closed", "TBA", or similar non-date text, return empty string ""
- "deadline_date": The submission deadline as an ISO date YYYY-MM-DD (e.g. "2026-03-30"). If the year is missing, assume 2026. If the deadline has passed or is not a real date, return empty string ""
- "conference_dates": When the conference takes place (e.g. "September 4-5, 2026")
- "location": Where the conference is held (city, country, or institution)
- "keynote_speakers": Names of keynote/invited/plenary speakers, comma-separated
- "description": A 1-2 sentence summary of what the conference is about
- "topics": Broad research fields (max 25 words total). Use short general category names like "labor economics, development, trade" - not specific paper titles or session names

Conference title: %s

Page text:
%s`

// Extract asks the model for the structured fields of one announcement.
// The caller decides what to do on failure; nothing is retried here.
func (c *Classifier) Extract(ctx context.Context, title, pageText string) (Extraction, error) {
	prompt := fmt.Sprintf(extractPromptFmt, title, clip(pageText, extractTextLimit))

	raw, err := c.chatCompletion(ctx, extractSystem, prompt, 0)
	if err != nil {
		return Extraction{}, err
	}

	var ex Extraction
	if err := json.Unmarshal([]byte(stripFences(raw)), &ex); err != nil {
		return Extraction{}, fmt.Errorf("decode extraction: %w", err)
	}
	return ex, nil
}

const relevanceSystem = "You classify academic conference relevance. Respond with valid JSON only."

const relevancePromptFmt = `Decide if this academic conference is relevant for a researcher based on the topic filters below.
Return a JSON object: {"relevant": true/false, "reason": "<1 sentence explanation>", "detected_topics": "<comma-separated topics you identified>"}

%s
Rules:
- A conference is relevant if ANY of its topics or sessions broadly falls into at least one include topic. It does NOT need to be the primary focus - even partial overlap is enough.
- A conference is NOT relevant only if its focus is clearly and specifically on an exclude topic, with no meaningful overlap with include topics.
  For example: a conference on "AI in finance" or "machine learning for asset pricing" is a FINANCE conference, not a machine-learning conference - exclude it.
- Broad conferences that accept submissions from many fields (including the include topics) ARE relevant - include them.
- When in doubt, include the conference.

Conference title: %s

Page text (excerpt):
%s`

// CheckRelevance asks the model whether a conference passes the topic
// filters. A missing verdict in the response counts as relevant; the
// fail-open policy for call failures lives with the caller.
func (c *Classifier) CheckRelevance(ctx context.Context, title, pageText string, include, exclude []string) (Relevance, error) {
	var criteria strings.Builder
	if len(include) > 0 {
		fmt.Fprintf(&criteria, "Topics to INCLUDE: %s\n", strings.Join(include, ", "))
	}
	if len(exclude) > 0 {
		fmt.Fprintf(&criteria, "Topics to EXCLUDE: %s\n", strings.Join(exclude, ", "))
	}

	prompt := fmt.Sprintf(relevancePromptFmt, criteria.String(), title, clip(pageText, relevanceTextLimit))

	raw, err := c.chatCompletion(ctx, relevanceSystem, prompt, 120)
	if err != nil {
		return Relevance{}, err
	}

	var payload struct {
		Relevant       *bool  `json:"relevant"`
		Reason         string `json:"reason"`
		DetectedTopics string `json:"detected_topics"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		return Relevance{}, fmt.Errorf("decode relevance: %w", err)
	}

	rel := Relevance{
		Relevant:       true,
		Reason:         payload.Reason,
		DetectedTopics: payload.DetectedTopics,
	}
	if payload.Relevant != nil {
		rel.Relevant = *payload.Relevant
	}
	return rel, nil
}

// chatCompletion posts one chat request and returns the first choice.
func (c *Classifier) chatCompletion(ctx context.Context, system, user string, maxTokens int) (string, error) {
	c.throttle(ctx)

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMsg{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0,
		MaxTokens:   maxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("openai error: %s", chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("openai: no response choices returned")
	}
	return chatResp.Choices[0].Message.Content, nil
}

// throttle spaces API calls apart, starting from the second one.
func (c *Classifier) throttle(ctx context.Context) {
	if !c.called {
		c.called = true
		return
	}
	if c.pause <= 0 {
		return
	}
	t := time.NewTimer(c.pause)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

var (
	fenceOpenRe  = regexp.MustCompile("^```(?:json)?[ \t]*\n?")
	fenceCloseRe = regexp.MustCompile("\n?[ \t]*```$")
)

// stripFences removes a markdown code fence the model wrapped around its
// JSON despite instructions.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = fenceOpenRe.ReplaceAllString(raw, "")
	raw = fenceCloseRe.ReplaceAllString(raw, "")
	return strings.TrimSpace(raw)
}

// clip bounds s to at most limit bytes.
func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
