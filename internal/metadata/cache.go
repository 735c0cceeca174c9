package metadata

import (
	"log/slog"
	"sync"

	"photomigrate/internal/models"
)

// Cache maps file paths to extracted metadata for one run. It is
// built once over the full file universe and read-only afterwards.
type Cache struct {
	meta map[string]*models.FileMeta
}

// Get returns the cached metadata for a path.
func (c *Cache) Get(path string) (*models.FileMeta, bool) {
	m, ok := c.meta[path]
	return m, ok
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	return len(c.meta)
}

// Builder fills a Cache using a bounded worker pool.
type Builder struct {
	extractor *Extractor
	workers   int
	logger    *slog.Logger
}

// NewBuilder creates a Builder with the given pool size.
func NewBuilder(extractor *Extractor, workers int, logger *slog.Logger) *Builder {
	if workers < 1 {
		workers = 1
	}
	return &Builder{extractor: extractor, workers: workers, logger: logger}
}

// Build extracts metadata for the source and archive universes in
// parallel. Each worker writes only its own result slot; results are
// folded into the map after all workers finish.
func (b *Builder) Build(source, archive []string) *Cache {
	type job struct {
		path     string
		archived bool
		order    int
	}

	jobs := make([]job, 0, len(source)+len(archive))
	for i, p := range source {
		jobs = append(jobs, job{path: p, archived: false, order: i})
	}
	for i, p := range archive {
		jobs = append(jobs, job{path: p, archived: true, order: i})
	}

	results := make([]*models.FileMeta, len(jobs))

	work := make(chan int, len(jobs))
	for i := range jobs {
		work <- i
	}
	close(work)

	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				j := jobs[i]
				m := b.extractor.Extract(j.path, j.archived)
				m.Order = j.order
				results[i] = m
			}
		}()
	}
	wg.Wait()

	// Single-writer fold after the barrier.
	meta := make(map[string]*models.FileMeta, len(results))
	for _, m := range results {
		meta[m.Path] = m
	}
	return &Cache{meta: meta}
}
