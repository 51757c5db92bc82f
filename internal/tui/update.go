package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/finchley/locksmith/internal/event"
	"github.com/finchley/locksmith/internal/locks"
	"github.com/finchley/locksmith/internal/tui/keymap"
)

// Update is the single entry point for every message the program loop
// processes, which makes it the coordinator's logical thread.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.input.Width = msg.Width - 8
		m.clampScroll()

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}

	case tea.FocusMsg:
		// The repository may have moved underneath the app while it was
		// backgrounded; the controller re-reads state and decides whether
		// a refresh is due.
		m.ctrl.FocusGained()

	case tea.BlurMsg:
		// Background work continues; nothing to do.

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)

	case applyMsg:
		msg.fn()

	case controllerStartedMsg:
		m.log.Debug("controller running")

	case startFailedMsg:
		m.startErr = msg.err
		m.quitting = true
		cmds = append(cmds, tea.Quit)

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
			m.noticeErr = false
		}
	}

	// Fold in whatever this cycle published before rendering.
	if cmd := m.consumeEvents(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	m.syncRows()

	return m, tea.Batch(cmds...)
}

// handleKey routes a key press through the mode's binding table.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	cmd, bound := m.keys.Lookup(msg, m.mode)

	switch m.mode {
	case keymap.ModeInput:
		if !bound {
			// Typed characters belong to the path prompt.
			var c tea.Cmd
			m.input, c = m.input.Update(msg)
			return m, c
		}
		return m.execInputCommand(cmd)

	case keymap.ModeConfirm:
		if !bound {
			// The confirm guard swallows stray keys so a buffered
			// keystroke cannot force-unlock someone's work.
			return m, nil
		}
		return m.execConfirmCommand(cmd)

	default:
		if !bound {
			return m, nil
		}
		return m.execNormalCommand(cmd)
	}
}

func (m Model) execNormalCommand(cmd keymap.Command) (Model, tea.Cmd) {
	// An open help overlay turns quit into close.
	if m.showHelp && (cmd == keymap.CmdQuit || cmd == keymap.CmdHelp) {
		m.showHelp = false
		return m, nil
	}

	switch cmd {
	case keymap.CmdQuit:
		m.quitting = true
		return m, tea.Quit

	case keymap.CmdHelp:
		m.showHelp = true

	case keymap.CmdCursorDown:
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.clampScroll()
		}

	case keymap.CmdCursorUp:
		if m.cursor > 0 {
			m.cursor--
			m.clampScroll()
		}

	case keymap.CmdRefresh:
		m.coord.Refresh()

	case keymap.CmdLock:
		m.mode = keymap.ModeInput
		m.input.SetValue("")
		return m, m.input.Focus()

	case keymap.CmdUnlock:
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		if err := m.coord.Unlock(row.ID, false); err != nil {
			return m, m.setNotice(err.Error(), true)
		}

	case keymap.CmdForceUnlock:
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		m.confirmPath = row.Path
		m.confirmID = row.ID
		m.mode = keymap.ModeConfirm

	case keymap.CmdCycleSort:
		m.coord.SetSort(nextSortKey(m.coord.SortKey()), m.coord.SortAscending())

	case keymap.CmdToggleSortDir:
		m.coord.SetSort(m.coord.SortKey(), !m.coord.SortAscending())

	case keymap.CmdToggleAutoRefresh:
		enabled := !m.coord.AutoRefresh()
		m.coord.SetAutoRefresh(enabled)
		if enabled {
			return m, m.setNotice("auto-refresh enabled", false)
		}
		return m, m.setNotice("auto-refresh disabled", false)

	case keymap.CmdToggleGUIDs:
		m.showGUIDs = !m.showGUIDs
	}

	return m, nil
}

func (m Model) execInputCommand(cmd keymap.Command) (Model, tea.Cmd) {
	switch cmd {
	case keymap.CmdAcceptInput:
		path := strings.TrimSpace(m.input.Value())
		m.mode = keymap.ModeNormal
		m.input.Blur()
		if path == "" {
			return m, nil
		}
		if err := m.coord.Lock(path); err != nil {
			return m, m.setNotice(err.Error(), true)
		}

	case keymap.CmdCancelInput:
		m.mode = keymap.ModeNormal
		m.input.Blur()
	}

	return m, nil
}

func (m Model) execConfirmCommand(cmd keymap.Command) (Model, tea.Cmd) {
	path, id := m.confirmPath, m.confirmID
	m.confirmPath = ""
	m.confirmID = ""
	m.mode = keymap.ModeNormal

	if cmd != keymap.CmdConfirmYes {
		return m, nil
	}
	if err := m.coord.Unlock(id, true); err != nil {
		return m, m.setNotice(fmt.Sprintf("force-unlock %s: %v", path, err), true)
	}
	return m, nil
}

// consumeEvents drains the bus inbox and folds the events into view state.
func (m *Model) consumeEvents() tea.Cmd {
	if m.inbox == nil {
		return nil
	}
	var cmds []tea.Cmd
	for _, e := range m.inbox.drain() {
		switch ev := e.(type) {
		case event.LockStatusChangedEvent:
			if ev.Err != "" {
				cmds = append(cmds, m.setNotice(
					fmt.Sprintf("%s %s failed: %s", ev.Action, ev.Path, ev.Err), true))
			}

		case event.LocksRefreshedEvent:
			if ev.Errored {
				cmds = append(cmds, m.setNotice("refresh failed, showing last known locks", true))
			}

		case event.BranchChangedEvent:
			m.branch = ev.Branch
			cmds = append(cmds, m.setNotice("switched to "+ev.Branch, false))
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// nextSortKey cycles path → user → id → path.
func nextSortKey(k locks.SortKey) locks.SortKey {
	switch k {
	case locks.SortByPath:
		return locks.SortByUser
	case locks.SortByUser:
		return locks.SortByID
	default:
		return locks.SortByPath
	}
}
