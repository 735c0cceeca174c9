package metadata

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseContainerTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{
			"exif colons",
			"2024:06:15 10:30:00",
			time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			"iso with T",
			"2024-06-15T10:30:00",
			time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			"subseconds and zone dropped",
			"2024-06-15T10:30:00.123+02:00",
			time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			"zulu suffix dropped",
			"2024-06-15T10:30:00Z",
			time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC),
		},
		{"garbage", "not a date", time.Time{}},
		{"empty", "", time.Time{}},
		{"date only", "2024-06-15", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseContainerTimestamp(tt.input)
			if !got.Equal(tt.expected) {
				t.Errorf("parseContainerTimestamp(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtract_FallsBackToFileTime(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "no-exif.jpg")
	if err := os.WriteFile(path, []byte("not a real jpeg"), 0644); err != nil {
		t.Fatal(err)
	}

	// Push the modification time into the past; the change time stays
	// "now", so the earlier of the two must win.
	past := time.Date(2020, 3, 1, 9, 0, 0, 0, time.Local)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatal(err)
	}

	e := &Extractor{logger: testLogger()}
	meta := e.Extract(path, false)

	if meta.Size != int64(len("not a real jpeg")) {
		t.Errorf("Size = %d", meta.Size)
	}
	if !meta.CapturedAt.Equal(past) {
		t.Errorf("CapturedAt = %v, want %v", meta.CapturedAt, past)
	}
	if meta.Archived {
		t.Error("Archived should be false")
	}
}

func TestExtract_MissingFile(t *testing.T) {
	e := &Extractor{logger: testLogger()}
	meta := e.Extract("/nonexistent/file.jpg", true)

	if meta.Size != 0 {
		t.Errorf("Size = %d, want 0", meta.Size)
	}
	if meta.HasTimestamp() {
		t.Error("missing file must not resolve a timestamp")
	}
	if !meta.Archived {
		t.Error("Archived flag should carry through")
	}
}

func TestBuild_FoldsBothUniverses(t *testing.T) {
	tmpDir := t.TempDir()
	var source, archive []string
	for i, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		p := filepath.Join(tmpDir, name)
		if err := os.WriteFile(p, []byte{byte(i)}, 0644); err != nil {
			t.Fatal(err)
		}
		source = append(source, p)
	}
	ap := filepath.Join(tmpDir, "20240101_001.jpg")
	if err := os.WriteFile(ap, []byte("archived"), 0644); err != nil {
		t.Fatal(err)
	}
	archive = append(archive, ap)

	e := &Extractor{logger: testLogger()}
	cache := NewBuilder(e, 4, testLogger()).Build(source, archive)

	if cache.Len() != 4 {
		t.Fatalf("Len = %d, want 4", cache.Len())
	}

	for i, p := range source {
		m, ok := cache.Get(p)
		if !ok {
			t.Fatalf("source %s missing from cache", p)
		}
		if m.Archived {
			t.Errorf("%s should not be archived", p)
		}
		if m.Order != i {
			t.Errorf("%s Order = %d, want %d", p, m.Order, i)
		}
	}

	m, ok := cache.Get(ap)
	if !ok || !m.Archived {
		t.Errorf("archive entry missing or not flagged: %v", m)
	}
}
