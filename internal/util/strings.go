// Package util provides small string helpers shared by the TUI and CLI
// output paths.
package util

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// TruncateString truncates a string to maxLen runes, adding "..." if
// truncated. It does not account for ANSI escape codes or wide characters;
// for styled terminal output use TruncateANSI instead.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 3 {
		return "..."
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// TruncatePath shortens a repo-relative path to maxLen runes by eliding the
// middle. The tail is favored over the head: the file name is the part the
// user scans a lock list for, the leading directories are usually shared
// noise like "Assets/".
func TruncatePath(path string, maxLen int) string {
	if maxLen <= 3 {
		return "..."
	}
	runes := []rune(path)
	if len(runes) <= maxLen {
		return path
	}
	keep := maxLen - 3
	head := keep / 3
	tail := keep - head
	return string(runes[:head]) + "..." + string(runes[len(runes)-tail:])
}

// DisplayWidth returns the visual column width of s, ignoring ANSI escape
// sequences and counting wide characters as two columns.
func DisplayWidth(s string) int {
	return lipgloss.Width(s)
}

// TruncateANSI truncates a string to maxWidth visual columns, adding "..."
// if truncated. It handles ANSI escape codes and wide characters, making it
// safe for styled table cells.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	// ansi.Truncate counts the tail against the final width.
	return ansi.Truncate(s, maxWidth, "...")
}
