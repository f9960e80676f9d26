package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pfrederiksen/confsheet/internal/calendar"
	"github.com/pfrederiksen/confsheet/internal/classify"
	"github.com/pfrederiksen/confsheet/internal/config"
	"github.com/pfrederiksen/confsheet/internal/logger"
	"github.com/pfrederiksen/confsheet/internal/pipeline"
	"github.com/pfrederiksen/confsheet/internal/sources"
	"github.com/pfrederiksen/confsheet/internal/store"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess    = 0
	ExitError      = 1
	ExitNewRecords = 2
)

var (
	flagConfig  string
	flagData    string
	flagSources string
	flagInclude string
	flagExclude string
	flagModel   string
	flagBaseURL string
	flagReport  string
	flagICS     string
	flagFormat  string
	flagDebug   bool
	flagVerbose bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confsheet",
		Short: "Collect academic conference announcements into a spreadsheet",
		Long: `A CLI tool that aggregates call-for-papers announcements from multiple
conference listing sites, deduplicates them against the records it already
holds, extracts deadlines and dates with an LLM, and keeps everything in a
two-sheet xlsx workbook of active and past conferences.`,
		RunE: runAggregate,
	}

	// Define flags
	cmd.Flags().StringVar(&flagConfig, "config", "", "Config file path (default ~/.confsheet/config.json)")
	cmd.Flags().StringVar(&flagData, "data", "", "Workbook path, overrides the config file")
	cmd.Flags().StringVar(&flagSources, "sources", "", "Comma-separated source names (default: all)")
	cmd.Flags().StringVar(&flagInclude, "include", "", "Comma-separated topics to keep")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "Comma-separated topics to drop")
	cmd.Flags().StringVar(&flagModel, "model", "", "Chat model for extraction and relevance")
	cmd.Flags().StringVar(&flagBaseURL, "base-url", "", "OpenAI-compatible API base URL")
	cmd.Flags().StringVar(&flagReport, "report", "", "Write a JSON run report to this path")
	cmd.Flags().StringVar(&flagICS, "ics", "", "Write an iCalendar file of upcoming deadlines to this path")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&flagDebug, "debug", false, "Log every relevance verdict")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	return cmd
}

// runAggregate is the main command logic
func runAggregate(cmd *cobra.Command, args []string) error {
	// Validate format
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	if flagVerbose {
		logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
	}

	configPath := flagConfig
	if configPath == "" {
		configPath = config.DefaultPath()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Flags override the config file
	if flagData != "" {
		cfg.DataFile = flagData
	}
	if flagSources != "" {
		cfg.Sources = config.ParseTopics(flagSources)
	}
	if flagInclude != "" {
		cfg.IncludeTopics = config.ParseTopics(flagInclude)
	}
	if flagExclude != "" {
		cfg.ExcludeTopics = config.ParseTopics(flagExclude)
	}
	if flagModel != "" {
		cfg.Model = flagModel
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}

	dataFile, err := config.ExpandPath(cfg.DataFile)
	if err != nil {
		return fmt.Errorf("resolving data file: %w", err)
	}

	selected, err := sources.Select(cfg.Sources)
	if err != nil {
		return fmt.Errorf("selecting sources: %w", err)
	}

	if flagVerbose {
		names := make([]string, 0, len(selected))
		for _, src := range selected {
			names = append(names, src.Name())
		}
		fmt.Fprintf(os.Stderr, "Data file: %s\n", dataFile)
		fmt.Fprintf(os.Stderr, "Checking sources: %s\n", strings.Join(names, ", "))
	}

	cls, err := classify.New(classify.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	})
	if err != nil {
		return fmt.Errorf("initializing classifier: %w", err)
	}

	p := &pipeline.Pipeline{
		Sources:       selected,
		Client:        sources.NewClient(),
		Classifier:    cls,
		Store:         store.New(dataFile),
		IncludeTopics: cfg.IncludeTopics,
		ExcludeTopics: cfg.ExcludeTopics,
		Debug:         flagDebug,
		PastLimit:     cfg.PastLimit,
	}

	result, err := p.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("running aggregation: %w", err)
	}

	if flagReport != "" {
		if err := pipeline.WriteReport(flagReport, result.Report); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		if flagVerbose {
			fmt.Fprintf(os.Stderr, "Wrote report to %s\n", flagReport)
		}
	}

	if flagICS != "" {
		ics := calendar.Generate(result.Active, "Conference deadlines")
		if ics == "" {
			fmt.Fprintln(os.Stderr, "No dated deadlines to export, skipping calendar")
		} else if err := os.WriteFile(flagICS, []byte(ics), 0644); err != nil {
			return fmt.Errorf("writing calendar: %w", err)
		}
	}

	// Prepare output
	sortRecordsByDeadline(result.Report.NewRecords)
	out := &OutputResult{
		CheckedAt:   time.Now().UTC(),
		DataFile:    dataFile,
		Sources:     result.Report.Sources,
		Stages:      result.Report.Stages,
		NewRecords:  result.Report.NewRecords,
		NewCount:    len(result.Report.NewRecords),
		ActiveCount: len(result.Active),
		PastCount:   len(result.Past),
	}

	if err := WriteOutput(os.Stdout, out, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	// Set exit code based on whether new conferences were found
	if out.NewCount > 0 {
		os.Exit(ExitNewRecords)
	} else {
		os.Exit(ExitSuccess)
	}

	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
