package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type capturedRequest struct {
	path          string
	authorization string
	body          chatRequest
}

func chatServer(t *testing.T, content string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.authorization = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured.body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func newTestClassifier(t *testing.T, baseURL string) *Classifier {
	t.Helper()
	c, err := New(Config{APIKey: "test-key", BaseURL: baseURL})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	c.pause = 0
	return c
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("New() without API key expected error, got nil")
	}
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(Config{APIKey: "k"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if c.model != DefaultModel {
		t.Errorf("model = %q, want %q", c.model, DefaultModel)
	}
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultBaseURL)
	}
}

func TestExtract(t *testing.T) {
	content := "```json\n" + `{
		"submission_deadline": "March 30, 2026",
		"deadline_date": "2026-03-30",
		"conference_dates": "September 4-5, 2026",
		"location": "Lisbon, Portugal",
		"keynote_speakers": "Ana Ribeiro, Daniel Okafor",
		"description": "A summit on applied econometrics.",
		"topics": "econometrics, labor economics"
	}` + "\n```"

	var captured capturedRequest
	server := chatServer(t, content, &captured)
	defer server.Close()

	c := newTestClassifier(t, server.URL)
	ex, err := c.Extract(context.Background(), "Applied Econometrics Summit", "Call for papers.")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if ex.SubmissionDeadline != "March 30, 2026" {
		t.Errorf("SubmissionDeadline = %q", ex.SubmissionDeadline)
	}
	if ex.DeadlineDate != "2026-03-30" {
		t.Errorf("DeadlineDate = %q", ex.DeadlineDate)
	}
	if ex.ConferenceDates != "September 4-5, 2026" {
		t.Errorf("ConferenceDates = %q", ex.ConferenceDates)
	}
	if ex.Location != "Lisbon, Portugal" {
		t.Errorf("Location = %q", ex.Location)
	}
	if ex.KeynoteSpeakers != "Ana Ribeiro, Daniel Okafor" {
		t.Errorf("KeynoteSpeakers = %q", ex.KeynoteSpeakers)
	}
	if ex.Topics != "econometrics, labor economics" {
		t.Errorf("Topics = %q", ex.Topics)
	}

	if captured.path != "/chat/completions" {
		t.Errorf("path = %q, want /chat/completions", captured.path)
	}
	if captured.authorization != "Bearer test-key" {
		t.Errorf("Authorization = %q", captured.authorization)
	}
	if captured.body.Model != DefaultModel {
		t.Errorf("model = %q, want %q", captured.body.Model, DefaultModel)
	}
	if captured.body.Temperature != 0 {
		t.Errorf("temperature = %v, want 0", captured.body.Temperature)
	}
	if len(captured.body.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(captured.body.Messages))
	}
	user := captured.body.Messages[1].Content
	if !strings.Contains(user, "Applied Econometrics Summit") {
		t.Error("prompt should carry the conference title")
	}
	if !strings.Contains(user, "assume 2026") {
		t.Error("prompt should instruct the default year")
	}
}

func TestExtract_ClipsPageText(t *testing.T) {
	var captured capturedRequest
	server := chatServer(t, "{}", &captured)
	defer server.Close()

	c := newTestClassifier(t, server.URL)
	pageText := strings.Repeat("x", extractTextLimit) + "TAIL"
	if _, err := c.Extract(context.Background(), "T", pageText); err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if strings.Contains(captured.body.Messages[1].Content, "TAIL") {
		t.Errorf("page text should be clipped to %d bytes", extractTextLimit)
	}
}

func TestExtract_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "quota exceeded", "type": "insufficient_quota"},
		})
	}))
	defer server.Close()

	c := newTestClassifier(t, server.URL)
	_, err := c.Extract(context.Background(), "T", "text")
	if err == nil {
		t.Fatal("Extract() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error = %v, should carry the API message", err)
	}
}

func TestExtract_MalformedResponse(t *testing.T) {
	var captured capturedRequest
	server := chatServer(t, "sorry, I cannot help with that", &captured)
	defer server.Close()

	c := newTestClassifier(t, server.URL)
	if _, err := c.Extract(context.Background(), "T", "text"); err == nil {
		t.Fatal("Extract() with non-JSON content expected error, got nil")
	}
}

func TestCheckRelevance(t *testing.T) {
	content := `{"relevant": false, "reason": "finance focus only", "detected_topics": "finance, asset pricing"}`

	var captured capturedRequest
	server := chatServer(t, content, &captured)
	defer server.Close()

	c := newTestClassifier(t, server.URL)
	rel, err := c.CheckRelevance(context.Background(), "Asset Pricing Summit", "Call for papers.",
		[]string{"labor economics", "trade"}, []string{"finance"})
	if err != nil {
		t.Fatalf("CheckRelevance() error: %v", err)
	}

	if rel.Relevant {
		t.Error("Relevant = true, want false")
	}
	if rel.Reason != "finance focus only" {
		t.Errorf("Reason = %q", rel.Reason)
	}
	if rel.DetectedTopics != "finance, asset pricing" {
		t.Errorf("DetectedTopics = %q", rel.DetectedTopics)
	}

	if captured.body.MaxTokens != 120 {
		t.Errorf("max_tokens = %d, want 120", captured.body.MaxTokens)
	}
	user := captured.body.Messages[1].Content
	if !strings.Contains(user, "Topics to INCLUDE: labor economics, trade") {
		t.Errorf("prompt missing include criteria:\n%s", user)
	}
	if !strings.Contains(user, "Topics to EXCLUDE: finance") {
		t.Errorf("prompt missing exclude criteria:\n%s", user)
	}
}

func TestCheckRelevance_MissingVerdictIncludes(t *testing.T) {
	var captured capturedRequest
	server := chatServer(t, `{"reason": "no verdict given"}`, &captured)
	defer server.Close()

	c := newTestClassifier(t, server.URL)
	rel, err := c.CheckRelevance(context.Background(), "T", "text", nil, nil)
	if err != nil {
		t.Fatalf("CheckRelevance() error: %v", err)
	}
	if !rel.Relevant {
		t.Error("a response without a verdict should count as relevant")
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"fence with padding", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
		{"single line fence", "```json {\"a\":1} ```", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.raw); got != tt.want {
				t.Errorf("stripFences(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
