// Package metadata resolves capture timestamps and sizes for media
// files and caches them for the rest of the evaluation run.
package metadata

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/barasher/go-exiftool"
	"github.com/rwcarlsen/goexif/exif"

	"photomigrate/internal/models"
)

const exifTimeLayout = "2006:01:02 15:04:05"

// Extractor resolves FileMeta for single files. Every failure degrades
// to "no value"; extraction never aborts a run.
type Extractor struct {
	et     *exiftool.Exiftool // nil when the exiftool binary is unavailable
	logger *slog.Logger
}

// NewExtractor creates an Extractor. The exiftool binary is optional;
// without it, video timestamps and HEIC capture tags fall back to
// filesystem times.
func NewExtractor(logger *slog.Logger) *Extractor {
	et, err := exiftool.NewExiftool()
	if err != nil {
		logger.Debug("exiftool unavailable, container timestamps disabled", "error", err)
		et = nil
	}
	return &Extractor{et: et, logger: logger}
}

// Close releases the exiftool subprocess, if any.
func (e *Extractor) Close() {
	if e.et != nil {
		e.et.Close()
	}
}

// Extract resolves metadata for one file. CapturedAt is zero when no
// timestamp could be determined; Size is zero when the file cannot be
// statted.
func (e *Extractor) Extract(path string, archived bool) *models.FileMeta {
	meta := &models.FileMeta{Path: path, Archived: archived}

	if info, err := os.Stat(path); err == nil {
		meta.Size = info.Size()
	} else {
		e.logger.Warn("failed to stat file", "path", path, "error", err)
	}

	meta.CapturedAt = e.captureTime(path)
	return meta
}

// captureTime applies the timestamp policy: embedded capture tag for
// images, container creation date for videos, then the earliest
// available filesystem time.
func (e *Extractor) captureTime(path string) time.Time {
	if models.IsImage(path) {
		if t := exifDateTaken(path); !t.IsZero() {
			return t
		}
		// goexif only understands JPEG/TIFF streams; HEIC and friends
		// need the exiftool binary.
		if t := e.exiftoolField(path, "DateTimeOriginal"); !t.IsZero() {
			return t
		}
	}
	if models.IsVideo(path) {
		if t := e.exiftoolField(path, "CreateDate"); !t.IsZero() {
			return t
		}
	}
	return fileTimes(path)
}

// exifDateTaken reads the EXIF DateTimeOriginal tag. Malformed or
// absent tags yield a zero time.
func exifDateTaken(path string) time.Time {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}
	}
	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return time.Time{}
	}
	s, err := tag.StringVal()
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(exifTimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// exiftoolField reads one timestamp field via the exiftool binary.
func (e *Extractor) exiftoolField(path, field string) time.Time {
	if e.et == nil {
		return time.Time{}
	}
	metas := e.et.ExtractMetadata(path)
	if len(metas) == 0 || metas[0].Err != nil {
		return time.Time{}
	}
	s, err := metas[0].GetString(field)
	if err != nil {
		return time.Time{}
	}
	return parseContainerTimestamp(s)
}

// parseContainerTimestamp parses an ISO-8601-like container timestamp,
// keeping only the date-and-time portion: sub-second precision and any
// timezone suffix are discarded and the result is a naive local time.
func parseContainerTimestamp(s string) time.Time {
	s = strings.Replace(s, "T", " ", 1)
	if len(s) > len(exifTimeLayout) {
		s = s[:len(exifTimeLayout)]
	}
	for _, layout := range []string{exifTimeLayout, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// fileTimes returns the minimum of the file's last-modified and
// last-status-change timestamps, using whichever the platform exposes.
func fileTimes(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	t := info.ModTime()
	if ct, ok := changeTime(path); ok && ct.Before(t) {
		t = ct
	}
	return t
}
