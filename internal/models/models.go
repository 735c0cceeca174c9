package models

import (
	"path/filepath"
	"strings"
	"time"
)

// DayKeyFormat is the calendar-date layout used for archive folders,
// target names and sequence counters.
const DayKeyFormat = "20060102"

// FileMeta holds the cached metadata for one file in either universe.
type FileMeta struct {
	Path       string
	Size       int64
	CapturedAt time.Time // zero when no timestamp could be resolved
	Archived   bool      // true for files already in the archive
	Order      int       // discovery order within its universe
}

// HasTimestamp reports whether a capture timestamp was resolved.
func (m *FileMeta) HasTimestamp() bool {
	return !m.CapturedAt.IsZero()
}

// DayKey returns the calendar date of the capture timestamp.
func (m *FileMeta) DayKey() string {
	return m.CapturedAt.Format(DayKeyFormat)
}

// ImageFeatures holds the perceptual fingerprint of one candidate
// image, computed over an orientation-corrected thumbnail.
type ImageFeatures struct {
	Path      string
	Hash      uint64      // 64-bit perception hash of the thumbnail
	Histogram [64]float64 // normalized 4x4x4 RGB histogram, diagnostic only
}

// Disposition states what should happen to a source file.
type Disposition string

const (
	DispositionImport    Disposition = "import"
	DispositionDuplicate Disposition = "duplicate"
)

// Entry statuses written by the process stage. Errors are recorded as
// "error: <reason>" and are not interpreted further.
const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// PlaceholderName is assigned to duplicate entries, which never
// consume a sequence ordinal.
const PlaceholderName = "-"

// PlanEntry is one row of the evaluation plan.
type PlanEntry struct {
	ID          int64
	Source      string
	CapturedAt  time.Time
	Folder      string // target day-folder, e.g. "20240615"
	Name        string // target name, e.g. "20240615_001.jpg"
	Disposition Disposition
	Convert     bool
	Status      string
}

// TargetExt maps a source extension to the archive extension and
// reports whether a conversion is required.
func TargetExt(ext string) (string, bool) {
	switch strings.ToLower(ext) {
	case ".heic":
		return ".jpg", true
	case ".mov":
		return ".mp4", true
	default:
		return strings.ToLower(ext), false
	}
}

// IsImage reports whether the path has a recognized still-image extension.
func IsImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tiff", ".tif", ".heic":
		return true
	default:
		return false
	}
}

// IsVideo reports whether the path has a recognized video-container extension.
func IsVideo(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mov", ".mp4", ".m4v", ".avi", ".mkv":
		return true
	default:
		return false
	}
}
