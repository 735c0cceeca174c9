package planlog

import (
	"path/filepath"
	"testing"
	"time"

	"photomigrate/internal/models"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	store, err := NewStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStorage_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "test.db")

	store, err := NewStorage(dbPath)
	if err != nil {
		t.Fatalf("NewStorage failed to create directories: %v", err)
	}
	store.Close()
}

func TestSaveRun_AndEntriesByRun(t *testing.T) {
	store := openTestStorage(t)

	captured := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	run := &Run{
		ID:         "run-1",
		StartedAt:  time.Date(2024, 6, 20, 8, 0, 0, 0, time.UTC),
		Imports:    1,
		Duplicates: 1,
		Skipped:    0,
	}
	entries := []models.PlanEntry{
		{
			Source:      "/raw/IMG_0001.HEIC",
			CapturedAt:  captured,
			Folder:      "20240615",
			Name:        "20240615_001.jpg",
			Disposition: models.DispositionImport,
			Convert:     true,
			Status:      models.StatusPending,
		},
		{
			Source:      "/raw/IMG_0002.jpg",
			CapturedAt:  captured,
			Folder:      "20240615",
			Name:        models.PlaceholderName,
			Disposition: models.DispositionDuplicate,
			Status:      models.StatusDone,
		},
	}

	if err := store.SaveRun(run, entries); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := store.EntriesByRun("run-1")
	if err != nil {
		t.Fatalf("EntriesByRun failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}

	first := got[0]
	if first.ID == 0 {
		t.Error("entry should receive a row ID")
	}
	if first.Source != entries[0].Source ||
		first.Folder != entries[0].Folder ||
		first.Name != entries[0].Name ||
		first.Disposition != models.DispositionImport ||
		!first.Convert ||
		first.Status != models.StatusPending {
		t.Errorf("first entry mismatch: %+v", first)
	}
	if !first.CapturedAt.Equal(captured) {
		t.Errorf("CapturedAt = %v, want %v", first.CapturedAt, captured)
	}

	second := got[1]
	if second.Disposition != models.DispositionDuplicate || second.Name != models.PlaceholderName {
		t.Errorf("second entry mismatch: %+v", second)
	}
}

func TestLatestRun(t *testing.T) {
	store := openTestStorage(t)

	if run, err := store.LatestRun(); err != nil || run != nil {
		t.Fatalf("empty db: got (%v, %v), want (nil, nil)", run, err)
	}

	older := &Run{ID: "old", StartedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	newer := &Run{ID: "new", StartedAt: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), Imports: 5}
	if err := store.SaveRun(older, nil); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveRun(newer, nil); err != nil {
		t.Fatal(err)
	}

	run, err := store.LatestRun()
	if err != nil {
		t.Fatalf("LatestRun failed: %v", err)
	}
	if run.ID != "new" || run.Imports != 5 {
		t.Errorf("LatestRun = %+v, want the newer run", run)
	}
}

func TestUpdateStatus(t *testing.T) {
	store := openTestStorage(t)

	run := &Run{ID: "run-1", StartedAt: time.Now().UTC()}
	entries := []models.PlanEntry{{
		Source:      "/raw/a.jpg",
		CapturedAt:  time.Now().UTC(),
		Folder:      "20240615",
		Name:        "20240615_001.jpg",
		Disposition: models.DispositionImport,
		Status:      models.StatusPending,
	}}
	if err := store.SaveRun(run, entries); err != nil {
		t.Fatal(err)
	}

	got, err := store.EntriesByRun("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateStatus(got[0].ID, models.StatusDone); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	got, err = store.EntriesByRun("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Status != models.StatusDone {
		t.Errorf("Status = %q, want done", got[0].Status)
	}
}

func TestReopen_SchemaIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewStorage(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	run := &Run{ID: "run-1", StartedAt: time.Now().UTC()}
	if err := store.SaveRun(run, nil); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = NewStorage(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	got, err := store.LatestRun()
	if err != nil || got == nil || got.ID != "run-1" {
		t.Errorf("run lost across reopen: (%v, %v)", got, err)
	}
}
