package dedup

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"photomigrate/internal/models"
)

// NearDetector finds source images that are recompressed copies of a
// larger original captured within a short preceding time window.
type NearDetector struct {
	SmallMaxBytes int64 // upper size bound for recompressed candidates
	LargeMinBytes int64 // lower size bound for originals
	WindowDays    int   // inclusive day window preceding the candidate
	MaxDistance   int   // Hamming distance threshold

	workers int
	logger  *slog.Logger
}

// NewNearDetector creates a NearDetector with the standard bands:
// candidates under 500 KB, originals over 1 MB, a 10-day window and a
// hash distance of at most 3.
func NewNearDetector(workers int, logger *slog.Logger) *NearDetector {
	if workers < 1 {
		workers = 1
	}
	return &NearDetector{
		SmallMaxBytes: 500 * 1024,
		LargeMinBytes: 1024 * 1024,
		WindowDays:    10,
		MaxDistance:   3,
		workers:       workers,
		logger:        logger,
	}
}

// Detect returns the set of source paths flagged as compression
// variants. alreadyDuplicate holds paths the exact detector flagged;
// those are never re-examined.
func (d *NearDetector) Detect(metas []*models.FileMeta, alreadyDuplicate map[string]bool) map[string]bool {
	candidates, originals := d.partition(metas, alreadyDuplicate)
	originals = d.pruneOriginals(candidates, originals)
	if len(candidates) == 0 || len(originals) == 0 {
		return nil
	}

	features := d.extractAll(candidates, originals)

	return d.match(candidates, originals, features)
}

// partition splits still images into small candidates and large
// originals. Files outside both bands, without timestamps, or already
// flagged are ignored. Only source files can be candidates; originals
// may come from either universe.
func (d *NearDetector) partition(metas []*models.FileMeta, alreadyDuplicate map[string]bool) (candidates, originals []*models.FileMeta) {
	for _, m := range metas {
		if !models.IsImage(m.Path) || !m.HasTimestamp() {
			continue
		}
		switch {
		case !m.Archived && m.Size > 0 && m.Size < d.SmallMaxBytes && !alreadyDuplicate[m.Path]:
			candidates = append(candidates, m)
		case m.Size > d.LargeMinBytes:
			originals = append(originals, m)
		}
	}
	return candidates, originals
}

// pruneOriginals keeps only originals with at least one candidate in
// their forward window; the rest are never feature-extracted.
func (d *NearDetector) pruneOriginals(candidates, originals []*models.FileMeta) []*models.FileMeta {
	kept := originals[:0]
	for _, o := range originals {
		for _, c := range candidates {
			if d.inWindow(c.CapturedAt, o.CapturedAt) {
				kept = append(kept, o)
				break
			}
		}
	}
	return kept
}

// inWindow reports whether the original's capture day precedes the
// candidate's by 0 to WindowDays inclusive, at day granularity.
func (d *NearDetector) inWindow(candidate, original time.Time) bool {
	days := int(truncateDay(candidate).Sub(truncateDay(original)).Hours() / 24)
	return days >= 0 && days <= d.WindowDays
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// extractAll computes features for every candidate and pruned original
// in parallel. Extraction failures exclude the file from comparison.
func (d *NearDetector) extractAll(candidates, originals []*models.FileMeta) map[string]*models.ImageFeatures {
	paths := make([]string, 0, len(candidates)+len(originals))
	for _, m := range candidates {
		paths = append(paths, m.Path)
	}
	for _, m := range originals {
		paths = append(paths, m.Path)
	}

	results := make([]*models.ImageFeatures, len(paths))

	work := make(chan int, len(paths))
	for i := range paths {
		work <- i
	}
	close(work)

	var wg sync.WaitGroup
	for w := 0; w < d.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				feats, err := ExtractFeatures(paths[i])
				if err != nil {
					d.logger.Warn("failed to extract image features, excluded from comparison",
						"path", paths[i], "error", err)
					continue
				}
				results[i] = feats
			}
		}()
	}
	wg.Wait()

	features := make(map[string]*models.ImageFeatures, len(results))
	for _, f := range results {
		if f != nil {
			features[f.Path] = f
		}
	}
	return features
}

// match flags every candidate whose perception hash is within
// MaxDistance of some original captured in its preceding window. The
// first match flags the candidate and ends its scan.
func (d *NearDetector) match(candidates, originals []*models.FileMeta, features map[string]*models.ImageFeatures) map[string]bool {
	// Index original hashes; the tree narrows each candidate's scan to
	// hash neighbours before the window check.
	tree := newBKTree(HammingDistance)
	indexed := make([]*models.FileMeta, 0, len(originals))
	for _, o := range originals {
		f, ok := features[o.Path]
		if !ok {
			continue
		}
		tree.insert(f.Hash, len(indexed))
		indexed = append(indexed, o)
	}

	duplicates := make(map[string]bool)
	for _, c := range candidates {
		f, ok := features[c.Path]
		if !ok {
			continue
		}
		neighbours := tree.findWithinDistance(f.Hash, d.MaxDistance)
		sort.Ints(neighbours)
		for _, i := range neighbours {
			if c.Path == indexed[i].Path {
				continue
			}
			if d.inWindow(c.CapturedAt, indexed[i].CapturedAt) {
				duplicates[c.Path] = true
				break
			}
		}
	}
	return duplicates
}
