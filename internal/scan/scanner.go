// Package scan gathers the source and archive file universes that the
// evaluation engine operates on.
package scan

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"photomigrate/internal/config"
)

// Gatherer walks raw and archive directories and applies the
// extension-exclusion and Live Photo clip-skipping policies.
type Gatherer struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewGatherer creates a Gatherer.
func NewGatherer(cfg *config.Config, logger *slog.Logger) *Gatherer {
	return &Gatherer{cfg: cfg, logger: logger}
}

// Source collects all media files under the configured raw
// directories, in a stable walk order. A missing raw directory is
// logged and skipped; an unreadable one aborts the run.
func (g *Gatherer) Source() ([]string, error) {
	var files []string
	for _, dir := range g.cfg.RawDirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			g.logger.Warn("raw folder not found", "dir", dir)
			continue
		}
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			if g.wanted(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
		}
	}

	if g.cfg.SkipLivePhotoClips {
		files = skipLivePhotoClips(files)
	}
	return files, nil
}

// Archive collects all files under the archive directory. A missing
// archive directory yields an empty universe.
func (g *Gatherer) Archive() ([]string, error) {
	if _, err := os.Stat(g.cfg.ArchiveDir); os.IsNotExist(err) {
		return nil, nil
	}
	var files []string
	err := filepath.Walk(g.cfg.ArchiveDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk archive %s: %w", g.cfg.ArchiveDir, err)
	}
	return files, nil
}

// wanted applies the extension filters: a file is gathered when its
// extension is a configured image or video extension and not excluded.
func (g *Gatherer) wanted(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range g.cfg.ExcludeExt {
		if ext == e {
			return false
		}
	}
	for _, e := range g.cfg.ImageExt {
		if ext == e {
			return true
		}
	}
	for _, e := range g.cfg.VideoExt {
		if ext == e {
			return true
		}
	}
	return false
}

// skipLivePhotoClips drops .mov files whose stem matches a gathered
// .heic stem (the paired motion clip of an iPhone Live Photo).
func skipLivePhotoClips(files []string) []string {
	heicStems := make(map[string]bool)
	for _, f := range files {
		if strings.EqualFold(filepath.Ext(f), ".heic") {
			heicStems[strings.ToLower(stem(f))] = true
		}
	}

	kept := files[:0]
	for _, f := range files {
		if strings.EqualFold(filepath.Ext(f), ".mov") && heicStems[strings.ToLower(stem(f))] {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
