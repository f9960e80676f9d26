// Package pipeline sequences one aggregation run end to end: fetch
// candidates from every configured source, deduplicate them against the
// persisted records, classify what is genuinely new, and write the updated
// workbook. The run is single-threaded; sources fetch one after another and
// classifier calls are sequential.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/confsheet/internal/classify"
	"github.com/pfrederiksen/confsheet/internal/conference"
	"github.com/pfrederiksen/confsheet/internal/logger"
	"github.com/pfrederiksen/confsheet/internal/sources"
)

// Classifier is the slice of the language-model client the pipeline uses.
type Classifier interface {
	Extract(ctx context.Context, title, pageText string) (classify.Extraction, error)
	CheckRelevance(ctx context.Context, title, pageText string, include, exclude []string) (classify.Relevance, error)
}

// Store is the slice of the record store the pipeline uses.
type Store interface {
	Load() (active, past []conference.Record, err error)
	Save(active, past []conference.Record) error
}

// Pipeline wires one run's collaborators. Everything it needs is passed in
// explicitly; there is no module-level state to configure.
type Pipeline struct {
	Sources    []sources.Source
	Client     *sources.Client
	Classifier Classifier
	Store      Store

	// IncludeTopics and ExcludeTopics configure the relevance filter.
	// Both empty disables it and every new candidate is classified.
	IncludeTopics []string
	ExcludeTopics []string

	// Debug raises per-candidate relevance rationale to INFO so it is
	// visible without verbose logging.
	Debug bool

	// PastLimit caps the past sheet; zero means conference.DefaultPastLimit.
	PastLimit int

	// Now is the clock used for partitioning; nil means time.Now.
	Now func() time.Time
}

// Result is what one run produced: the two partitions as saved, and the
// report describing how the run got there.
type Result struct {
	Active []conference.Record
	Past   []conference.Record
	Report RunReport
}

// Run executes one aggregation pass.
//
// The sequence: load the persisted records and derive the known-URL set;
// fetch from every source; deduplicate fresh candidates against each other
// and the persisted records; relevance-filter and classify the genuinely
// new ones; clean dead deadlines; re-merge everything so richer fresh data
// folds into existing entries; partition into active and past; save.
//
// A failing source or a failing classification never aborts the run. Load
// and save failures do: nothing is written on a failed run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	report := RunReport{Timestamp: p.now().UTC()}

	activeOld, pastOld, err := p.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	persisted := make([]conference.Record, 0, len(activeOld)+len(pastOld))
	persisted = append(persisted, activeOld...)
	persisted = append(persisted, pastOld...)
	known := conference.NewKnownURLSet(persisted)
	logger.Info("records loaded", logger.Fields{
		"active": len(activeOld),
		"past":   len(pastOld),
	})

	candidates := p.fetchAll(ctx, known, &report)
	fresh := p.newUnique(candidates, persisted, known, &report)
	classified := p.classifyAll(ctx, fresh, &report)

	kept, dead := conference.CleanDeadlines(classified)
	for _, r := range dead {
		report.exclude(r.Title, "deadline expired or closed")
		logger.Info("candidate excluded", logger.Fields{
			"title":  r.Title,
			"reason": "deadline expired or closed",
		})
	}
	report.NewRecords = kept

	// Second merge pass: fresh records that classification enriched with
	// dates or locations may now match a persisted entry they could not
	// match as raw candidates.
	entries := make([]conference.Entry, 0, len(persisted)+len(kept))
	for _, r := range persisted {
		entries = append(entries, conference.RecordEntry(r))
	}
	for _, r := range kept {
		entries = append(entries, conference.Entry{Record: r})
	}
	merged := make([]conference.Record, 0, len(entries))
	for _, e := range conference.Merge(entries) {
		merged = append(merged, e.Record)
	}

	active, past := conference.Partition(merged, p.now(), p.PastLimit)

	if err := p.Store.Save(active, past); err != nil {
		return nil, fmt.Errorf("saving records: %w", err)
	}

	report.Stages.Excluded = len(report.Exclusions)
	report.Stages.Active = len(active)
	report.Stages.Past = len(past)
	logger.SetGauge("sheet.active", float64(len(active)))
	logger.SetGauge("sheet.past", float64(len(past)))
	logger.Info("run complete", logger.Fields{
		"fetched":       report.Stages.Fetched,
		"known_skipped": report.Stages.KnownSkipped,
		"new_unique":    report.Stages.NewUnique,
		"relevant":      report.Stages.Relevant,
		"classified":    report.Stages.Classified,
		"excluded":      report.Stages.Excluded,
		"active":        report.Stages.Active,
		"past":          report.Stages.Past,
	})

	return &Result{Active: active, Past: past, Report: report}, nil
}

// fetchAll collects candidates from every source in order. A source failing
// contributes nothing and the run continues.
func (p *Pipeline) fetchAll(ctx context.Context, known conference.KnownURLSet, report *RunReport) []conference.RawCandidate {
	var candidates []conference.RawCandidate
	for _, src := range p.Sources {
		start := time.Now()
		fetched, err := src.Fetch(ctx, p.Client, known)
		logger.RecordTiming("fetch."+src.Name(), time.Since(start))

		count := SourceCount{Source: src.Name(), Fetched: len(fetched)}
		if err != nil {
			count.Error = err.Error()
			logger.Error("source failed, skipping", logger.Fields{"source": src.Name()}, err)
		} else {
			logger.Info("source fetched", logger.Fields{
				"source":     src.Name(),
				"candidates": len(fetched),
			})
		}
		report.Sources = append(report.Sources, count)
		candidates = append(candidates, fetched...)
	}
	report.Stages.Fetched = len(candidates)
	logger.AddCounter("pipeline.fetched", int64(len(candidates)))
	return candidates
}

// newUnique decides which candidates are genuinely new. Candidates whose
// URL is already persisted are dropped outright. The rest deduplicate
// together with the persisted records; a merge group containing any
// persisted member is already represented, so only purely fresh groups
// yield a new candidate, as the group's merged representative.
func (p *Pipeline) newUnique(candidates []conference.RawCandidate, persisted []conference.Record, known conference.KnownURLSet, report *RunReport) []conference.RawCandidate {
	entries := make([]conference.Entry, 0, len(candidates)+len(persisted))
	for _, r := range persisted {
		entries = append(entries, conference.RecordEntry(r))
	}
	skipped := 0
	for _, c := range candidates {
		if known.Contains(c.URL) {
			skipped++
			continue
		}
		entries = append(entries, conference.CandidateEntry(c))
	}

	var fresh []conference.RawCandidate
	for _, g := range conference.Dedup(entries) {
		if g.HasPersisted() {
			continue
		}
		fresh = append(fresh, g.Merged.Candidate())
	}

	report.Stages.KnownSkipped = skipped
	report.Stages.NewUnique = len(fresh)
	logger.AddCounter("pipeline.known_skipped", int64(skipped))
	logger.AddCounter("pipeline.new_unique", int64(len(fresh)))
	logger.Info("deduplicated", logger.Fields{
		"new_unique":    len(fresh),
		"known_skipped": skipped,
	})
	return fresh
}

// classifyAll turns new candidates into full records. With topic filters
// configured, the cheap relevance call runs first and irrelevant candidates
// never reach the extraction call. A candidate whose classification fails
// is skipped; its URL stays unknown, so the next run retries it.
func (p *Pipeline) classifyAll(ctx context.Context, candidates []conference.RawCandidate, report *RunReport) []conference.Record {
	filtering := len(p.IncludeTopics) > 0 || len(p.ExcludeTopics) > 0

	var records []conference.Record
	for _, cand := range candidates {
		if strings.TrimSpace(cand.PageText) == "" {
			report.exclude(cand.Title, "no page text")
			logger.Warn("no page text, skipping", logger.Fields{
				"title": cand.Title,
				"url":   cand.URL,
			})
			continue
		}

		if filtering {
			verdict, err := p.Classifier.CheckRelevance(ctx, cand.Title, cand.PageText, p.IncludeTopics, p.ExcludeTopics)
			if err != nil {
				// Fail open: a flaky model must not silently drop
				// conferences.
				logger.Error("relevance check failed, keeping candidate", logger.Fields{"title": cand.Title}, err)
				verdict = classify.Relevance{Relevant: true, Reason: "relevance check failed"}
			}
			fields := logger.Fields{
				"title":    cand.Title,
				"relevant": verdict.Relevant,
				"reason":   verdict.Reason,
				"topics":   verdict.DetectedTopics,
			}
			if p.Debug {
				logger.Info("relevance verdict", fields)
			} else {
				logger.Debug("relevance verdict", fields)
			}
			if !verdict.Relevant {
				report.exclude(cand.Title, "not relevant: "+verdict.Reason)
				continue
			}
			report.Stages.Relevant++
			logger.IncrCounter("pipeline.relevant")
		}

		extraction, err := p.Classifier.Extract(ctx, cand.Title, cand.PageText)
		if err != nil {
			logger.Error("classification failed, skipping candidate", logger.Fields{
				"title": cand.Title,
				"url":   cand.URL,
			}, err)
			continue
		}
		records = append(records, buildRecord(cand, extraction))
		report.Stages.Classified++
		logger.IncrCounter("pipeline.classified")
	}
	return records
}

// buildRecord assembles the persisted record for a candidate from its
// extraction. The ISO deadline date is preferred over the free-text
// deadline because it parses deterministically for partitioning and
// display. Dates and location scraped from the listing survive when the
// model returned none, so the record keeps its exact-match key.
func buildRecord(cand conference.RawCandidate, x classify.Extraction) conference.Record {
	deadline := strings.TrimSpace(x.DeadlineDate)
	if deadline == "" {
		deadline = strings.TrimSpace(x.SubmissionDeadline)
	}

	rec := conference.Record{
		Title:              cand.Title,
		SubmissionDeadline: deadline,
		ConferenceDates:    strings.TrimSpace(x.ConferenceDates),
		Location:           strings.TrimSpace(x.Location),
		Speakers:           strings.TrimSpace(x.KeynoteSpeakers),
		Description:        strings.TrimSpace(x.Description),
		Topics:             conference.TopicList(x.Topics),
		SourceURL:          cand.URL,
		Source:             cand.Source,
	}
	if rec.ConferenceDates == "" {
		rec.ConferenceDates = cand.ConferenceDates
	}
	if rec.Location == "" {
		rec.Location = cand.Location
	}
	return rec
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
