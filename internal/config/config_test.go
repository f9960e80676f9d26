package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	cfg, err := Load(filepath.Join(tmpDir, "nope.json"))
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for missing file", err)
	}
	if cfg.DataFile != DefaultDataFile {
		t.Errorf("DataFile = %q, want %q", cfg.DataFile, DefaultDataFile)
	}
	if cfg.Model != DefaultModel {
		t.Errorf("Model = %q, want %q", cfg.Model, DefaultModel)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
}

func TestLoad_FileValuesKept(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "config.json")
	content := `{
  "data_file": "/tmp/conferences.xlsx",
  "sources": ["inomics"],
  "include_topics": ["finance", "banking"],
  "past_limit": 5
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DataFile != "/tmp/conferences.xlsx" {
		t.Errorf("DataFile = %q, want the file's value", cfg.DataFile)
	}
	if !reflect.DeepEqual(cfg.Sources, []string{"inomics"}) {
		t.Errorf("Sources = %v, want [inomics]", cfg.Sources)
	}
	if !reflect.DeepEqual(cfg.IncludeTopics, []string{"finance", "banking"}) {
		t.Errorf("IncludeTopics = %v, want [finance banking]", cfg.IncludeTopics)
	}
	if cfg.PastLimit != 5 {
		t.Errorf("PastLimit = %d, want 5", cfg.PastLimit)
	}
	// Unset fields still get defaults.
	if cfg.Model != DefaultModel {
		t.Errorf("Model = %q, want default %q", cfg.Model, DefaultModel)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	t.Setenv("OPENAI_API_KEY", "sk-test-123")
	t.Setenv("CONFSHEET_MODEL", "gpt-4o")

	cfg, err := Load(filepath.Join(tmpDir, "nope.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIKey != "sk-test-123" {
		t.Errorf("APIKey = %q, want env value", cfg.APIKey)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("Model = %q, want env override %q", cfg.Model, "gpt-4o")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "nested", "config.json")
	cfg := &Config{
		DataFile:      "/tmp/sheet.xlsx",
		Sources:       []string{"inomics", "misfit"},
		ExcludeTopics: []string{"marketing"},
		APIKey:        "sk-should-not-persist",
	}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DataFile != cfg.DataFile {
		t.Errorf("DataFile = %q, want %q", loaded.DataFile, cfg.DataFile)
	}
	if !reflect.DeepEqual(loaded.Sources, cfg.Sources) {
		t.Errorf("Sources = %v, want %v", loaded.Sources, cfg.Sources)
	}

	// The API key must never land on disk.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "sk-should-not-persist") {
		t.Error("Save() wrote the API key to disk")
	}
}

func TestParseTopics(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "Simple list",
			input: "finance,banking",
			want:  []string{"finance", "banking"},
		},
		{
			name:  "Whitespace and empties trimmed",
			input: " ai , machine learning ,,",
			want:  []string{"ai", "machine learning"},
		},
		{
			name:  "Empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "Only separators",
			input: " , ,",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseTopics(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTopics(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

