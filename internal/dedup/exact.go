// Package dedup flags source files that duplicate archived or
// in-batch content, either byte-identically or as compression
// variants of the same photo.
package dedup

import (
	"log/slog"
	"sort"
	"sync"

	"photomigrate/internal/models"
)

// ExactDetector finds byte-identical files by grouping on size first
// and hashing only sizes that collide.
type ExactDetector struct {
	workers int
	logger  *slog.Logger
}

// NewExactDetector creates an ExactDetector with the given hashing
// pool size.
func NewExactDetector(workers int, logger *slog.Logger) *ExactDetector {
	if workers < 1 {
		workers = 1
	}
	return &ExactDetector{workers: workers, logger: logger}
}

// Detect returns the set of source paths whose content already exists
// in the archive or earlier in the batch. Archived files are never
// flagged.
func (d *ExactDetector) Detect(metas []*models.FileMeta) map[string]bool {
	// Size zero means the size was unreadable; such files never join
	// a duplicate group.
	bySize := make(map[int64][]*models.FileMeta)
	for _, m := range metas {
		if m.Size > 0 {
			bySize[m.Size] = append(bySize[m.Size], m)
		}
	}

	var groups [][]*models.FileMeta
	for _, group := range bySize {
		if len(group) >= 2 {
			groups = append(groups, group)
		}
	}

	hashes := d.hashGroups(groups)

	duplicates := make(map[string]bool)
	for _, group := range groups {
		byHash := make(map[string][]*models.FileMeta)
		for _, m := range group {
			if h, ok := hashes[m.Path]; ok {
				byHash[h] = append(byHash[h], m)
			}
		}
		for _, sub := range byHash {
			if len(sub) < 2 {
				continue
			}
			markDuplicates(sub, duplicates)
		}
	}
	return duplicates
}

// hashGroups hashes every member of the colliding-size groups,
// parallelized across groups since groups are disjoint. Unreadable
// files drop out of their group.
func (d *ExactDetector) hashGroups(groups [][]*models.FileMeta) map[string]string {
	type result struct {
		path string
		hash string
	}

	results := make([][]result, len(groups))

	work := make(chan int, len(groups))
	for i := range groups {
		work <- i
	}
	close(work)

	var wg sync.WaitGroup
	for w := 0; w < d.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				for _, m := range groups[i] {
					h, err := ComputeFileHash(m.Path)
					if err != nil {
						d.logger.Warn("failed to hash file, excluded from exact matching",
							"path", m.Path, "error", err)
						continue
					}
					results[i] = append(results[i], result{path: m.Path, hash: h})
				}
			}
		}()
	}
	wg.Wait()

	hashes := make(map[string]string)
	for _, rs := range results {
		for _, r := range rs {
			hashes[r.path] = r.hash
		}
	}
	return hashes
}

// markDuplicates applies the keep rule to one identical-content
// sub-group: if the archive already holds the content, every source
// copy is a duplicate; otherwise the smallest path is kept and the
// rest are duplicates.
func markDuplicates(sub []*models.FileMeta, duplicates map[string]bool) {
	hasArchived := false
	for _, m := range sub {
		if m.Archived {
			hasArchived = true
			break
		}
	}

	if hasArchived {
		for _, m := range sub {
			if !m.Archived {
				duplicates[m.Path] = true
			}
		}
		return
	}

	paths := make([]string, 0, len(sub))
	for _, m := range sub {
		paths = append(paths, m.Path)
	}
	sort.Strings(paths)
	for _, p := range paths[1:] {
		duplicates[p] = true
	}
}
