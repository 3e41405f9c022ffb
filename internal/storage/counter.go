package storage

import (
	"fmt"
	"strings"
)

// NextCounter returns the first counter for a save under base.
//
// It counts the existing names containing base and adds one, so a fresh
// destination starts at 1 and a destination holding K matching files starts
// at K+1. The count is a heuristic: unrelated names that happen to contain
// base are counted too, and gaps left by deleted files are not reused.
func NextCounter(existing []string, base string) int {
	n := 0
	for _, name := range existing {
		if strings.Contains(name, base) {
			n++
		}
	}
	return n + 1
}

// FileName builds "{base}{counter}.{ext}".
func FileName(base string, counter int, f Format) string {
	return fmt.Sprintf("%s%d.%s", base, counter, f.Extension())
}

// allocateNames picks count names starting at NextCounter, skipping any
// name already present in existing. It returns the names and the counter of
// the first one.
func allocateNames(existing []string, base string, f Format, count int) ([]string, int) {
	taken := make(map[string]bool, len(existing))
	for _, name := range existing {
		taken[name] = true
	}

	counter := NextCounter(existing, base)
	first := 0
	names := make([]string, 0, count)
	for len(names) < count {
		name := FileName(base, counter, f)
		if !taken[name] {
			if first == 0 {
				first = counter
			}
			names = append(names, name)
			taken[name] = true
		}
		counter++
	}
	return names, first
}
