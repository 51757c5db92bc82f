package locks

import (
	"runtime"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the column the lock list is ordered by.
type SortKey string

const (
	SortByPath SortKey = "path"
	SortByUser SortKey = "user"
	SortByID   SortKey = "id"
)

// PathStyle selects which platform's file-browser ordering the path
// comparator reproduces.
type PathStyle int

const (
	StylePOSIX PathStyle = iota
	StyleWindows
)

// HostStyle returns the PathStyle matching the running OS.
func HostStyle() PathStyle {
	if runtime.GOOS == "windows" {
		return StyleWindows
	}
	return StylePOSIX
}

// StyleFromName maps a config value ("windows", "posix", "") to a PathStyle,
// defaulting to the host OS.
func StyleFromName(name string) PathStyle {
	switch name {
	case "windows":
		return StyleWindows
	case "posix":
		return StylePOSIX
	default:
		return HostStyle()
	}
}

// SortKeyFromName maps a config value to a SortKey, defaulting to path.
func SortKeyFromName(name string) SortKey {
	switch name {
	case "user":
		return SortByUser
	case "id":
		return SortByID
	default:
		return SortByPath
	}
}

// Comparer performs locale-aware natural comparison and the
// platform-sensitive path comparison used to order the lock list. It is not
// safe for concurrent use; the store confines one to its own goroutine.
type Comparer struct {
	coll  *collate.Collator
	style PathStyle
}

// NewComparer creates a Comparer for the given path style.
func NewComparer(style PathStyle) *Comparer {
	return &Comparer{
		coll:  collate.New(language.Und, collate.Numeric, collate.IgnoreCase),
		style: style,
	}
}

// Natural compares two strings with locale collation where digit runs
// compare numerically, so "file9" sorts before "file10".
func (c *Comparer) Natural(a, b string) int {
	return c.coll.CompareString(a, b)
}

// Path compares two repo-relative paths the way the host platform's file
// browser orders them. On Windows a directory sorts before a file with the
// same prefix and, between two directories, the literally shorter name
// (the one already at its separator) sorts first. On POSIX a separator
// simply sorts before any other character at the first difference. When no
// platform rule applies, natural comparison of the full strings decides.
func (c *Comparer) Path(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			continue
		}

		// First differing character.
		switch c.style {
		case StyleWindows:
			aDir := segmentEndsAtSeparator(a, i)
			bDir := segmentEndsAtSeparator(b, i)
			if aDir && !bDir {
				return -1
			}
			if bDir && !aDir {
				return 1
			}
			if aDir && bDir {
				if isSeparator(a[i]) && !isSeparator(b[i]) {
					return -1
				}
				if isSeparator(b[i]) && !isSeparator(a[i]) {
					return 1
				}
			}
		default:
			if isSeparator(a[i]) && !isSeparator(b[i]) {
				return -1
			}
			if isSeparator(b[i]) && !isSeparator(a[i]) {
				return 1
			}
		}

		return c.Natural(a, b)
	}

	// Identical up to the shorter length. On Windows the longer path
	// continuing with a separator is a directory and sorts above the
	// same-named file ("b/file.txt" ahead of "b").
	if c.style == StyleWindows {
		if len(a) > n && isSeparator(a[n]) {
			return -1
		}
		if len(b) > n && isSeparator(b[n]) {
			return 1
		}
	}

	return c.Natural(a, b)
}

// Compare orders two records by the given key. User order breaks ties by
// path; direction is applied by the caller swapping operands, never by
// negating the result, so the tie-break stays stable under descending sort.
func (c *Comparer) Compare(a, b Lock, key SortKey) int {
	switch key {
	case SortByUser:
		if r := c.Natural(a.User, b.User); r != 0 {
			return r
		}
		return c.Path(a.Path, b.Path)
	case SortByID:
		return c.Natural(a.ID, b.ID)
	default:
		return c.Path(a.Path, b.Path)
	}
}

// isSeparator reports whether b is a path separator. Both separator
// characters are recognized on both platforms; tool output may mix them.
func isSeparator(b byte) bool {
	return b == '/' || b == '\\'
}

// segmentEndsAtSeparator reports whether the path segment containing index
// i ends at a separator, i.e. position i sits inside a directory component
// rather than the final file name.
func segmentEndsAtSeparator(s string, i int) bool {
	for j := i; j < len(s); j++ {
		if isSeparator(s[j]) {
			return true
		}
	}
	return false
}
