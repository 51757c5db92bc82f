package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// noticeTTL is how long a transient status notice stays on screen.
const noticeTTL = 5 * time.Second

// applyMsg carries a coordinator continuation into the program loop. The
// loop is the coordinator's logical thread, so running fn inside Update
// gives every continuation the single-threaded store access the
// coordinator assumes.
type applyMsg struct {
	fn func()
}

// controllerStartedMsg reports that Controller.Start completed.
type controllerStartedMsg struct{}

// startFailedMsg reports that Controller.Start failed. The UI surfaces the
// error and quits; App.Run returns it.
type startFailedMsg struct {
	err error
}

// noticeExpiredMsg clears the transient notice identified by seq. A stale
// seq means a newer notice replaced the one this timer was armed for.
type noticeExpiredMsg struct {
	seq int
}

// expireNotice arms the clear timer for the notice with the given seq.
func expireNotice(seq int) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}
