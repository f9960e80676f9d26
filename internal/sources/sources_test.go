package sources

import (
	"bytes"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("../../testdata/fixtures/" + name)
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}
	return data
}

func fixtureDoc(t *testing.T, name string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(loadFixture(t, name)))
	if err != nil {
		t.Fatalf("failed to parse fixture %s: %v", name, err)
	}
	return doc
}

func newTestClient() *Client {
	c := NewClient()
	c.retryInterval = time.Millisecond
	return c
}

func TestNames(t *testing.T) {
	want := []string{"inomics", "misfit"}
	if got := Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestSelect(t *testing.T) {
	all, err := Select(nil)
	if err != nil {
		t.Fatalf("Select(nil) error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Select(nil) returned %d sources, want 2", len(all))
	}

	one, err := Select([]string{" Inomics "})
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if len(one) != 1 || one[0].Name() != "inomics" {
		t.Errorf("Select() did not resolve case-insensitively: %v", one)
	}

	_, err = Select([]string{"bogus"})
	if err == nil {
		t.Fatal("Select() with unknown name expected error, got nil")
	}
	if !strings.Contains(err.Error(), "unknown source") {
		t.Errorf("error = %q, should name the unknown source", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q, want unchanged input", got)
	}
	if got := truncate("a longer piece of text", 8); got != "a longer" {
		t.Errorf("truncate() = %q, want %q", got, "a longer")
	}
}
