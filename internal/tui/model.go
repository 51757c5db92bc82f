package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/finchley/locksmith/internal/config"
	"github.com/finchley/locksmith/internal/locks"
	"github.com/finchley/locksmith/internal/logging"
	"github.com/finchley/locksmith/internal/repo"
	"github.com/finchley/locksmith/internal/tui/keymap"
	"github.com/finchley/locksmith/internal/tui/styles"
)

// Model is the bubbletea model for the lock table UI. Its Update loop
// doubles as the coordinator's logical thread: continuations arrive as
// applyMsg and run inside Update, so everything the model reads from the
// coordinator is loop-consistent without further locking.
type Model struct {
	coord   *locks.Coordinator
	ctrl    *locks.Controller
	repoCtx *repo.Context
	cfg     *config.Config
	log     *logging.Logger
	inbox   *eventInbox

	styles *styles.Styles
	keys   *keymap.Keymap

	// rows mirrors the store in display order, refreshed after every
	// Update cycle that could have changed it.
	rows   []locks.Lock
	cursor int
	scroll int

	width  int
	height int
	ready  bool

	mode  keymap.Mode
	input textinput.Model
	spin  spinner.Model

	showHelp  bool
	showGUIDs bool
	branch    string

	// Transient one-line notice, cleared by a timer keyed on noticeSeq.
	notice    string
	noticeErr bool
	noticeSeq int

	// Target captured when the force-unlock confirm guard opened.
	confirmPath string
	confirmID   string

	startErr error
	quitting bool
}

// ModelDeps carries the collaborators a Model needs.
type ModelDeps struct {
	Coordinator *locks.Coordinator
	Controller  *locks.Controller
	Repo        *repo.Context
	Config      *config.Config
	Logger      *logging.Logger
	Inbox       *eventInbox
}

// NewModel creates the initial model.
func NewModel(deps ModelDeps) Model {
	log := deps.Logger
	if log == nil {
		log = logging.NopLogger()
	}
	st := styles.New(deps.Config.TUI.Theme)

	ti := textinput.New()
	ti.Placeholder = "path/to/asset"
	ti.CharLimit = 512
	ti.Prompt = "> "

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(st.Spinner),
	)

	return Model{
		coord:     deps.Coordinator,
		ctrl:      deps.Controller,
		repoCtx:   deps.Repo,
		cfg:       deps.Config,
		log:       log.WithComponent("tui"),
		inbox:     deps.Inbox,
		styles:    st,
		keys:      keymap.Default(),
		mode:      keymap.ModeNormal,
		input:     ti,
		spin:      sp,
		showGUIDs: deps.Config.TUI.ShowGUIDs,
		branch:    deps.Repo.Branch,
	}
}

// Init starts the spinner and brings the controller up. Start runs in a
// command goroutine so its snapshot restore and first refresh are already
// scheduled as messages by the time the loop processes them.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.startController)
}

func (m Model) startController() tea.Msg {
	if err := m.ctrl.Start(); err != nil {
		return startFailedMsg{err: err}
	}
	return controllerStartedMsg{}
}

// selectedRow returns the lock under the cursor, or false when the table
// is empty.
func (m Model) selectedRow() (locks.Lock, bool) {
	if len(m.rows) == 0 || m.cursor < 0 || m.cursor >= len(m.rows) {
		return locks.Lock{}, false
	}
	return m.rows[m.cursor], true
}

// busy reports whether any background command is in flight.
func (m Model) busy() bool {
	return m.coord.RefreshInFlight() || m.coord.MutatingCount() > 0
}

// syncRows re-reads the store in display order and keeps the cursor on a
// valid row.
func (m *Model) syncRows() {
	m.rows = m.coord.Records()
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.clampScroll()
}

// clampScroll keeps the cursor inside the visible window.
func (m *Model) clampScroll() {
	visible := m.tableRows()
	if visible <= 0 {
		m.scroll = 0
		return
	}
	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	if m.cursor >= m.scroll+visible {
		m.scroll = m.cursor - visible + 1
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

// setNotice replaces the transient notice and returns the command that
// will clear it.
func (m *Model) setNotice(text string, isErr bool) tea.Cmd {
	m.notice = text
	m.noticeErr = isErr
	m.noticeSeq++
	return expireNotice(m.noticeSeq)
}
