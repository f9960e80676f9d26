// Package config loads and persists aggregator settings.
//
// Settings come from three layers: a JSON config file with defaults applied
// on top, a .env file loaded into the environment at startup, and
// environment variables which always win for credentials and service
// endpoints. Nothing in this package is module-level mutable state; callers
// receive a Config value and pass it down explicitly.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// DefaultDataFile is where the two-sheet workbook lives unless
	// overridden.
	DefaultDataFile = "~/.confsheet/conferences.xlsx"

	// DefaultModel is the OpenAI model used for extraction and relevance
	// checks.
	DefaultModel = "gpt-4o-mini"

	// DefaultBaseURL is the OpenAI API endpoint.
	DefaultBaseURL = "https://api.openai.com/v1"
)

// Config holds one run's settings.
type Config struct {
	DataFile      string   `json:"data_file"`
	Sources       []string `json:"sources,omitempty"`
	IncludeTopics []string `json:"include_topics,omitempty"`
	ExcludeTopics []string `json:"exclude_topics,omitempty"`
	Model         string   `json:"model,omitempty"`
	BaseURL       string   `json:"base_url,omitempty"`
	PastLimit     int      `json:"past_limit,omitempty"`

	// APIKey comes from the environment only and is never written to the
	// config file.
	APIKey string `json:"-"`
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return "~/.confsheet/config.json"
}

// Load reads the config file at path, fills in defaults for anything unset,
// and applies environment overrides. A missing file is not an error; the
// defaults are returned. A .env file in the working directory is loaded
// first so credentials can live next to the binary, without overriding
// variables already exported.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// Save writes the config as indented JSON, creating the directory if
// needed.
func (c *Config) Save(path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(expanded, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DataFile == "" {
		c.DataFile = DefaultDataFile
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("CONFSHEET_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("CONFSHEET_DATA_FILE"); v != "" {
		c.DataFile = v
	}
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// ParseTopics splits a comma-separated topic list into trimmed, non-empty
// entries. "ai, machine learning,," becomes ["ai" "machine learning"].
func ParseTopics(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	topics := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			topics = append(topics, p)
		}
	}
	if len(topics) == 0 {
		return nil
	}
	return topics
}
