// Package sequence assigns deterministic chronological names from
// per-day counters seeded by the existing archive.
package sequence

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// CounterTable maps a day-key to the highest ordinal already used for
// that day. Counters only ever increase within a run.
type CounterTable map[string]int

// archiveName matches archived stems of the form <8-digit day>_<digits>.
var archiveName = regexp.MustCompile(`^(\d{8})_(\d+)$`)

// ParseArchiveName splits an archived file name into its day-key and
// ordinal. Names not matching the pattern are ignored.
func ParseArchiveName(name string) (day string, ordinal int, ok bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	m := archiveName.FindStringSubmatch(stem)
	if m == nil {
		return "", 0, false
	}
	ordinal, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], ordinal, true
}

// BuildCounters seeds a CounterTable by scanning archived file paths
// for names of the form YYYYMMDD_NNN.ext.
func BuildCounters(paths []string) CounterTable {
	counters := make(CounterTable)
	for _, p := range paths {
		day, ordinal, ok := ParseArchiveName(filepath.Base(p))
		if !ok {
			continue
		}
		if ordinal > counters[day] {
			counters[day] = ordinal
		}
	}
	return counters
}
