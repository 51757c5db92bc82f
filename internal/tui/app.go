// Package tui is the interactive lock table. The bubbletea program loop
// doubles as the coordinator's logical thread: continuations, bus events
// and lifecycle signals all enter through program messages, so the update
// path never needs a lock of its own.
package tui

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/finchley/locksmith/internal/assets"
	"github.com/finchley/locksmith/internal/config"
	"github.com/finchley/locksmith/internal/event"
	"github.com/finchley/locksmith/internal/lfs"
	"github.com/finchley/locksmith/internal/locks"
	"github.com/finchley/locksmith/internal/logging"
	"github.com/finchley/locksmith/internal/repo"
)

// App owns the program and the domain stack behind it. It exists so the
// coordinator's schedule function has a stable place to reach the program
// from background goroutines.
type App struct {
	cfg     *config.Config
	repoCtx *repo.Context
	log     *logging.Logger

	bus   *event.Bus
	coord *locks.Coordinator
	ctrl  *locks.Controller
	inbox *eventInbox
	model Model

	mu      sync.Mutex
	program *tea.Program
}

// Options carries what the CLI resolved before handing over: configuration,
// the discovered repository and the process logger.
type Options struct {
	Config *config.Config
	Repo   *repo.Context
	Logger *logging.Logger
}

// New assembles the full interactive stack: LFS client, store, resolver,
// coordinator wired to schedule onto the program loop, and the lifecycle
// controller. Nothing starts until Run.
func New(opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = logging.NopLogger()
	}
	cfg := opts.Config
	repoCtx := opts.Repo

	a := &App{
		cfg:     cfg,
		repoCtx: repoCtx,
		log:     log.WithComponent("app"),
		bus:     event.NewBus(),
		inbox:   newEventInbox(),
	}

	client := lfs.NewClient(
		cfg.LFS.ToolPath,
		cfg.LFS.Timeout(),
		repoCtx.Root,
		repoCtx.LockCachePath(),
		log,
	)

	store := locks.NewStore(locks.StyleFromName(cfg.Sort.PathStyle))
	// Initial sort comes from config; a restored snapshot overrides it.
	store.Sort(locks.SortKeyFromName(cfg.Sort.Key), cfg.Sort.Ascending)

	coord := locks.NewCoordinator(locks.CoordinatorConfig{
		Client:             client,
		Store:              store,
		Resolver:           assets.NewMetaFileResolver(repoCtx.Root),
		Bus:                a.bus,
		Logger:             log,
		Schedule:           a.schedule,
		SelfUser:           repoCtx.User,
		SnapshotDir:        repoCtx.LFSDir(),
		DisableAutoRefresh: !cfg.Refresh.Auto,
	})

	ctrl := locks.NewController(locks.ControllerConfig{
		Coordinator: coord,
		Repo:        repoCtx,
		Bus:         a.bus,
		Logger:      log,
		Schedule:    a.schedule,
		Interval:    cfg.Refresh.Interval(),
		WatchHead:   true,
	})

	a.coord = coord
	a.ctrl = ctrl
	a.model = NewModel(ModelDeps{
		Coordinator: coord,
		Controller:  ctrl,
		Repo:        repoCtx,
		Config:      cfg,
		Logger:      log,
		Inbox:       a.inbox,
	})

	return a
}

// schedule hands a coordinator continuation to the program loop. Called
// from background goroutines only; once the program has exited the message
// is dropped, which is safe because dropped continuations only ever carry
// store updates nobody will read again.
func (a *App) schedule(fn func()) {
	a.mu.Lock()
	p := a.program
	a.mu.Unlock()
	if p == nil {
		return
	}
	p.Send(applyMsg{fn: fn})
}

// Run starts the program, bridges bus events and OS signals into it, and
// blocks until the user quits. The controller is stopped — draining every
// in-flight git-lfs command — before Run returns.
func (a *App) Run() error {
	p := tea.NewProgram(a.model,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
	)

	a.mu.Lock()
	a.program = p
	a.mu.Unlock()

	subID := a.bus.SubscribeAll(a.inbox.add)
	defer a.bus.Unsubscribe(subID)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			p.Send(tea.Quit())
		}
	}()

	a.log.Info("starting interactive session", "repo", a.repoCtx.Root)
	finalModel, err := p.Run()

	// Reject new work and wait out what is already running. Continuations
	// scheduled during the drain are dropped by Send on the dead program.
	a.ctrl.Stop()

	if err != nil {
		return err
	}
	if m, ok := finalModel.(Model); ok && m.startErr != nil {
		return m.startErr
	}
	return nil
}
