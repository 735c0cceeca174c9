// Package plan turns the gathered file universes into an evaluation
// plan: one entry per source file, named chronologically, with
// duplicates flagged instead of renamed.
package plan

import (
	"fmt"
	"log/slog"

	"photomigrate/internal/config"
	"photomigrate/internal/dedup"
	"photomigrate/internal/metadata"
	"photomigrate/internal/models"
	"photomigrate/internal/scan"
	"photomigrate/internal/sequence"
)

// Result is the outcome of one evaluation run.
type Result struct {
	Entries    []models.PlanEntry
	Imports    int
	Duplicates int
	Skipped    int // source files excluded for lack of a timestamp
}

// Evaluator runs the full pipeline: gather, extract metadata, detect
// duplicates, sequence and name.
type Evaluator struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(cfg *config.Config, logger *slog.Logger) *Evaluator {
	return &Evaluator{cfg: cfg, logger: logger}
}

// Evaluate produces the plan for the configured directories. The
// filesystem is only read, never written.
func (e *Evaluator) Evaluate() (*Result, error) {
	gatherer := scan.NewGatherer(e.cfg, e.logger)
	source, err := gatherer.Source()
	if err != nil {
		return nil, err
	}
	archive, err := gatherer.Archive()
	if err != nil {
		return nil, err
	}
	e.logger.Info("gathered files", "source", len(source), "archive", len(archive))

	extractor := metadata.NewExtractor(e.logger)
	defer extractor.Close()

	cache := metadata.NewBuilder(extractor, e.cfg.Workers, e.logger).Build(source, archive)

	// Source files without a resolvable timestamp cannot be placed in
	// the chronology and drop out of the run entirely.
	var metas []*models.FileMeta
	skipped := 0
	for _, p := range source {
		m, ok := cache.Get(p)
		if !ok {
			continue
		}
		if !m.HasTimestamp() {
			e.logger.Warn("no timestamp resolved, file excluded", "path", p)
			skipped++
			continue
		}
		metas = append(metas, m)
	}
	included := metas
	for _, p := range archive {
		if m, ok := cache.Get(p); ok {
			metas = append(metas, m)
		}
	}

	exact := dedup.NewExactDetector(e.cfg.Workers, e.logger).Detect(metas)

	near := dedup.NewNearDetector(e.cfg.Workers, e.logger)
	near.SmallMaxBytes = e.cfg.SmallMaxBytes
	near.LargeMinBytes = e.cfg.LargeMinBytes
	near.WindowDays = e.cfg.WindowDays
	near.MaxDistance = e.cfg.MaxHashDistance
	variants := near.Detect(metas, exact)

	duplicates := make(map[string]bool, len(exact)+len(variants))
	for p := range exact {
		duplicates[p] = true
	}
	for p := range variants {
		duplicates[p] = true
	}

	sequence.SortChronological(included)
	seq := sequence.NewSequencer(sequence.BuildCounters(archive))

	result := &Result{Skipped: skipped}
	for _, m := range included {
		entry := models.PlanEntry{
			Source:     m.Path,
			CapturedAt: m.CapturedAt,
			Folder:     m.DayKey(),
		}
		if duplicates[m.Path] {
			// Duplicates never consume an ordinal and need no work.
			entry.Disposition = models.DispositionDuplicate
			entry.Name = models.PlaceholderName
			entry.Status = models.StatusDone
			result.Duplicates++
		} else {
			folder, name, convert, err := seq.Next(m)
			if err != nil {
				return nil, fmt.Errorf("failed to name %s: %w", m.Path, err)
			}
			entry.Disposition = models.DispositionImport
			entry.Folder = folder
			entry.Name = name
			entry.Convert = convert
			entry.Status = models.StatusPending
			result.Imports++
		}
		result.Entries = append(result.Entries, entry)
	}

	e.logger.Info("evaluation complete",
		"imports", result.Imports,
		"duplicates", result.Duplicates,
		"skipped", result.Skipped)
	return result, nil
}
