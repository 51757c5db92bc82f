package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/finchley/locksmith/internal/tui/keymap"
	"github.com/finchley/locksmith/internal/util"
)

// View renders the whole screen. Layout is a single column: header, lock
// table (or help overlay), status bar, then notice/hint line, with the
// path prompt or confirm guard appended while one is active.
func (m Model) View() string {
	if m.startErr != nil {
		return fmt.Sprintf("startup failed: %v\n", m.startErr)
	}
	if m.quitting {
		return "draining background work...\n"
	}
	if !m.ready {
		return "initializing..."
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.showHelp {
		b.WriteString(m.renderHelp())
	} else {
		b.WriteString(m.renderTable())
	}
	b.WriteString("\n")

	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	switch m.mode {
	case keymap.ModeInput:
		b.WriteString("\n")
		b.WriteString(m.renderPrompt())
	case keymap.ModeConfirm:
		b.WriteString("\n")
		b.WriteString(m.renderConfirm())
	}

	return b.String()
}

func (m Model) renderHeader() string {
	repoName := filepath.Base(m.repoCtx.Root)
	return " " + m.styles.Title.Render("locksmith") +
		"  " + repoName +
		" on " + m.styles.Branch.Render(m.branch)
}

// tableRows is how many lock rows fit in the current window.
func (m Model) tableRows() int {
	// Header block, status, footer and surrounding blanks.
	reserved := 9
	if m.mode != keymap.ModeNormal {
		reserved += 4
	}
	n := m.height - reserved
	if n < 3 {
		n = 3
	}
	return n
}

// columnWidths splits the window across the table columns. The path column
// absorbs whatever the fixed columns leave over.
func (m Model) columnWidths() (pathW, userW, idW, guidW int) {
	idW = 8
	userW = 16
	if m.showGUIDs {
		guidW = 34
	}

	// 2-char owner marker plus a 2-space gap per column.
	fixed := 2 + userW + 2 + idW + 2
	if guidW > 0 {
		fixed += guidW + 2
	}
	pathW = m.width - fixed - 2
	if pathW < 16 {
		pathW = 16
	}
	return pathW, userW, idW, guidW
}

func (m Model) renderTable() string {
	var b strings.Builder
	pathW, userW, idW, guidW := m.columnWidths()

	header := "  " + pad("PATH", pathW) + "  " + pad("USER", userW) + "  " + pad("ID", idW)
	if guidW > 0 {
		header += "  " + pad("GUID", guidW)
	}
	b.WriteString(m.styles.TableHeader.Render(header))
	b.WriteString("\n")

	if len(m.rows) == 0 {
		b.WriteString(m.styles.Muted.Render("  No locks."))
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render("  Press [l] to lock a path, [r] to refresh."))
		return b.String()
	}

	visible := m.tableRows()
	start := m.scroll
	end := min(start+visible, len(m.rows))

	if start > 0 {
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("  ▲ %d more above", start)))
		b.WriteString("\n")
	}
	for i := start; i < end; i++ {
		b.WriteString(m.renderRow(i, pathW, userW, idW, guidW))
		b.WriteString("\n")
	}
	if end < len(m.rows) {
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("  ▼ %d more below", len(m.rows)-end)))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderRow(i, pathW, userW, idW, guidW int) string {
	lk := m.rows[i]

	marker := "  "
	if m.repoCtx.User != "" && lk.User == m.repoCtx.User {
		marker = "● "
	}

	id := lk.ID
	if id == "" {
		id = "…"
	}

	line := marker +
		pad(util.TruncateANSI(util.TruncatePath(lk.Path, pathW), pathW), pathW) + "  " +
		pad(util.TruncateANSI(lk.User, userW), userW) + "  " +
		pad(util.TruncateANSI(id, idW), idW)
	if guidW > 0 {
		guid := lk.AssetGUID
		if guid == "" {
			guid = "-"
		}
		line += "  " + pad(util.TruncateANSI(guid, guidW), guidW)
	}

	switch {
	case i == m.cursor && m.mode == keymap.ModeNormal:
		return m.styles.RowSelected.Render(line)
	case lk.Pending:
		return m.styles.RowPending.Render(line)
	default:
		return m.styles.Row.Render(line)
	}
}

func (m Model) renderStatus() string {
	var parts []string

	if m.busy() {
		parts = append(parts, m.spin.View()+"working")
	} else {
		parts = append(parts, countLocks(len(m.rows)))
	}

	dir := "↑"
	if !m.coord.SortAscending() {
		dir = "↓"
	}
	parts = append(parts, fmt.Sprintf("sort %s %s", m.coord.SortKey(), dir))

	if m.coord.AutoRefresh() {
		parts = append(parts, fmt.Sprintf("auto %ds", int(m.cfg.Refresh.Interval().Seconds())))
	} else {
		parts = append(parts, "auto off")
	}

	line := " " + m.styles.StatusBar.Render(strings.Join(parts, "  ·  "))
	if m.coord.LastRefreshErrored() {
		line += "  " + m.styles.StatusStale.Render("STALE")
	}
	return line
}

func (m Model) renderFooter() string {
	if m.notice != "" {
		st := m.styles.Notice
		if m.noticeErr {
			st = m.styles.NoticeError
		}
		return " " + st.Render(util.TruncateANSI(m.notice, max(m.width-2, 16)))
	}

	switch m.mode {
	case keymap.ModeInput:
		return " " + m.styles.Muted.Render("[enter] lock  [esc] cancel")
	case keymap.ModeConfirm:
		return " " + m.styles.Muted.Render("[y] confirm  [n] cancel")
	default:
		return " " + m.styles.Muted.Render("[r] refresh  [l] lock  [u] unlock  [F] force  [?] help  [q] quit")
	}
}

func (m Model) renderPrompt() string {
	content := m.styles.PromptLabel.Render("Lock path") + "\n" + m.input.View()
	return m.styles.PromptBox.Width(max(m.width-4, 20)).Render(content)
}

func (m Model) renderConfirm() string {
	id := m.confirmID
	if id == "" {
		id = "pending"
	}
	content := fmt.Sprintf("Force-unlock %s (id %s)?\nThis discards another user's claim. [y/N]",
		util.TruncatePath(m.confirmPath, max(m.width-24, 16)), id)
	return m.styles.ConfirmBox.Width(max(m.width-4, 20)).Render(content)
}

func (m Model) renderHelp() string {
	var b strings.Builder

	for ci, cat := range m.keys.Categories(keymap.ModeNormal) {
		if ci > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.styles.HelpCategory.Render(cat))
		b.WriteString("\n")
		for _, e := range mergeBindings(m.keys.ByCategory(keymap.ModeNormal)[cat]) {
			b.WriteString("  ")
			b.WriteString(m.styles.HelpKey.Render(pad(e.keys, 10)))
			b.WriteString(m.styles.HelpDesc.Render(e.desc))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("● marks your own locks. Press [?] or [q] to close."))

	return m.styles.HelpBox.Render(b.String())
}

type helpEntry struct {
	keys string
	desc string
}

// mergeBindings folds bindings that share a command into one help row,
// joining their key labels ("k/up").
func mergeBindings(bindings []keymap.KeyBinding) []helpEntry {
	var out []helpEntry
	index := make(map[keymap.Command]int)
	for _, b := range bindings {
		if i, ok := index[b.Command]; ok {
			out[i].keys += "/" + b.Label()
			continue
		}
		index[b.Command] = len(out)
		out = append(out, helpEntry{keys: b.Label(), desc: b.Description})
	}
	return out
}

// pad right-pads s to w display columns. Display width, not len: paths and
// user names are not always ASCII.
func pad(s string, w int) string {
	gap := w - util.DisplayWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

func countLocks(n int) string {
	if n == 1 {
		return "1 lock"
	}
	return fmt.Sprintf("%d locks", n)
}
