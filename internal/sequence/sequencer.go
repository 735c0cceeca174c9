package sequence

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"photomigrate/internal/models"
)

// ErrCounterOverflow is returned when a single day would need more
// than 999 ordinals. The field is never widened or wrapped silently.
var ErrCounterOverflow = errors.New("day counter exceeds 999")

// maxOrdinal bounds the zero-padded 3-digit ordinal field.
const maxOrdinal = 999

// Sequencer assigns day-folder and target names to non-duplicate
// files in chronological order. It owns the CounterTable for the run.
type Sequencer struct {
	counters CounterTable
}

// NewSequencer creates a Sequencer over a seeded CounterTable.
func NewSequencer(counters CounterTable) *Sequencer {
	if counters == nil {
		counters = make(CounterTable)
	}
	return &Sequencer{counters: counters}
}

// SortChronological orders files by capture timestamp ascending,
// breaking ties by discovery order so repeated runs over unchanged
// input produce identical ordering.
func SortChronological(metas []*models.FileMeta) {
	sort.SliceStable(metas, func(i, j int) bool {
		a, b := metas[i], metas[j]
		if !a.CapturedAt.Equal(b.CapturedAt) {
			return a.CapturedAt.Before(b.CapturedAt)
		}
		return a.Order < b.Order
	})
}

// Next assigns the target folder and name for one file, incrementing
// that day's counter.
func (s *Sequencer) Next(m *models.FileMeta) (folder, name string, convert bool, err error) {
	day := m.DayKey()
	ordinal := s.counters[day] + 1
	if ordinal > maxOrdinal {
		return "", "", false, fmt.Errorf("day %s: %w", day, ErrCounterOverflow)
	}
	s.counters[day] = ordinal

	ext, convert := models.TargetExt(filepath.Ext(m.Path))
	name = fmt.Sprintf("%s_%03d%s", day, ordinal, ext)
	return day, name, convert, nil
}
