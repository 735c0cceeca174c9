package dedup

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"photomigrate/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeMeta creates a file with the given content and returns its
// metadata.
func writeMeta(t *testing.T, dir, name string, content []byte, archived bool) *models.FileMeta {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	return &models.FileMeta{Path: path, Size: int64(len(content)), Archived: archived}
}

func TestExactDetect_ArchivedCopyFlagsAllSources(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte("the same photo bytes")

	archived := writeMeta(t, tmpDir, "20240101_001.jpg", content, true)
	src1 := writeMeta(t, tmpDir, "IMG_0001.jpg", content, false)
	src2 := writeMeta(t, tmpDir, "IMG_0002.jpg", content, false)

	d := NewExactDetector(2, testLogger())
	dups := d.Detect([]*models.FileMeta{archived, src1, src2})

	if !dups[src1.Path] || !dups[src2.Path] {
		t.Errorf("expected both source copies flagged, got %v", dups)
	}
	if dups[archived.Path] {
		t.Error("archived file must never be flagged")
	}
}

func TestExactDetect_SourceOnlyKeepsSmallestPath(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte("triplicate bytes")

	a := writeMeta(t, tmpDir, "a.jpg", content, false)
	b := writeMeta(t, tmpDir, "b.jpg", content, false)
	c := writeMeta(t, tmpDir, "c.jpg", content, false)

	d := NewExactDetector(2, testLogger())
	dups := d.Detect([]*models.FileMeta{c, a, b})

	if dups[a.Path] {
		t.Error("smallest path should be kept")
	}
	if !dups[b.Path] || !dups[c.Path] {
		t.Errorf("expected b and c flagged, got %v", dups)
	}
}

func TestExactDetect_SameSizeDifferentContent(t *testing.T) {
	tmpDir := t.TempDir()

	a := writeMeta(t, tmpDir, "a.jpg", []byte("aaaaaaaa"), false)
	b := writeMeta(t, tmpDir, "b.jpg", []byte("bbbbbbbb"), false)

	d := NewExactDetector(2, testLogger())
	dups := d.Detect([]*models.FileMeta{a, b})

	if len(dups) != 0 {
		t.Errorf("same size but different content must not match, got %v", dups)
	}
}

func TestExactDetect_UnknownSizeNeverGroups(t *testing.T) {
	a := &models.FileMeta{Path: "/gone/a.jpg", Size: 0}
	b := &models.FileMeta{Path: "/gone/b.jpg", Size: 0}

	d := NewExactDetector(2, testLogger())
	dups := d.Detect([]*models.FileMeta{a, b})

	if len(dups) != 0 {
		t.Errorf("size-zero files must not form a group, got %v", dups)
	}
}

func TestExactDetect_UnreadableFileDropsOut(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte("shared size")

	a := writeMeta(t, tmpDir, "a.jpg", content, false)
	// Same recorded size, but the file is missing at hash time.
	ghost := &models.FileMeta{Path: filepath.Join(tmpDir, "ghost.jpg"), Size: int64(len(content))}

	d := NewExactDetector(2, testLogger())
	dups := d.Detect([]*models.FileMeta{a, ghost})

	if len(dups) != 0 {
		t.Errorf("unreadable file must drop out of its group, got %v", dups)
	}
}
