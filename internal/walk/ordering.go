// Package walk implements the filesystem walker: a depth-first,
// budget-bounded, symlink-safe traversal that produces a typed tree of
// types.Node, honoring the pattern engine and a fixed directory ordering.
package walk

import (
	"os"
	"sort"
	"strings"
)

type dirEntry struct {
	name  string
	isDir bool
	info  os.FileInfo
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func isReadmeName(name string) bool {
	lower := strings.ToLower(name)
	return lower == "readme" || strings.HasPrefix(lower, "readme.")
}

// groupOf assigns the sort group :
// 0 README*, 1 non-hidden files, 2 hidden files, 3 non-hidden dirs,
// 4 hidden dirs, 5 symlinks.
func groupOf(e dirEntry) int {
	isSymlink := e.info.Mode()&os.ModeSymlink != 0
	switch {
	case isSymlink:
		return 5
	case isReadmeName(e.name) && !e.isDir:
		return 0
	case e.isDir && !isHidden(e.name):
		return 3
	case e.isDir && isHidden(e.name):
		return 4
	case !isHidden(e.name):
		return 1
	default:
		return 2
	}
}

// orderEntries sorts entries per the ordering rule, case-insensitive
// alphanumeric within each group.
func orderEntries(entries []dirEntry) []dirEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		gi, gj := groupOf(entries[i]), groupOf(entries[j])
		if gi != gj {
			return gi < gj
		}
		return strings.ToLower(entries[i].name) < strings.ToLower(entries[j].name)
	})
	return entries
}
