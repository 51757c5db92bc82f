package cmd

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/finchley/locksmith/internal/assets"
	"github.com/finchley/locksmith/internal/config"
	"github.com/finchley/locksmith/internal/event"
	"github.com/finchley/locksmith/internal/lfs"
	"github.com/finchley/locksmith/internal/locks"
	"github.com/finchley/locksmith/internal/logging"
	"github.com/finchley/locksmith/internal/repo"
)

// session wires the domain stack for one-shot commands. A Loop stands in
// for the TUI's program loop as the coordinator's logical thread: commands
// post work to it, settle, then read results back.
type session struct {
	cfg      *config.Config
	repoCtx  *repo.Context
	log      *logging.Logger
	client   *lfs.Client
	bus      *event.Bus
	loop     *locks.Loop
	coord    *locks.Coordinator
	outcomes *outcomeLog
}

// newSession loads config, discovers the repository and assembles the
// coordinator stack. Callers must close() it.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	repoCtx, err := repo.Discover(startDir(cmd))
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	log = log.WithRepo(repoCtx.Root)

	client := lfs.NewClient(
		cfg.LFS.ToolPath,
		cfg.LFS.Timeout(),
		repoCtx.Root,
		repoCtx.LockCachePath(),
		log,
	)

	store := locks.NewStore(locks.StyleFromName(cfg.Sort.PathStyle))
	store.Sort(locks.SortKeyFromName(cfg.Sort.Key), cfg.Sort.Ascending)

	bus := event.NewBus()
	outcomes := newOutcomeLog()
	bus.SubscribeAll(outcomes.add)

	loop := locks.NewLoop()
	coord := locks.NewCoordinator(locks.CoordinatorConfig{
		Client:      client,
		Store:       store,
		Resolver:    assets.NewMetaFileResolver(repoCtx.Root),
		Bus:         bus,
		Logger:      log,
		Schedule:    loop.Schedule,
		SelfUser:    repoCtx.User,
		SnapshotDir: repoCtx.LFSDir(),
	})

	return &session{
		cfg:      cfg,
		repoCtx:  repoCtx,
		log:      log,
		client:   client,
		bus:      bus,
		loop:     loop,
		coord:    coord,
		outcomes: outcomes,
	}, nil
}

// newLogger builds the process logger: a JSON file logger when enabled in
// config, otherwise a no-op.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	return logging.NewLogger(cfg.LogDir(), cfg.Logging.Level)
}

// close drains in-flight work and shuts the logical thread down.
func (s *session) close() {
	s.coord.Shutdown()
	s.coord.WaitForTasks()
	s.loop.Close()
	_ = s.log.Close()
}

// run executes fn on the logical thread and waits for it.
func (s *session) run(fn func()) {
	s.loop.Schedule(fn)
	s.loop.Flush()
}

// settle waits until every dispatched command has finished and its
// continuation has been applied. After settle the loop is idle, so reading
// coordinator state directly from this goroutine is ordered by the flush
// barrier.
func (s *session) settle() {
	s.loop.Flush()
	s.coord.WaitForTasks()
	s.loop.Flush()
}

// refresh performs one synchronous lock-list refresh.
func (s *session) refresh() error {
	s.run(func() { s.coord.Refresh() })
	s.settle()
	if s.coord.LastRefreshErrored() {
		return fmt.Errorf("could not refresh lock list from the LFS server")
	}
	return nil
}

// restore loads the persisted snapshot without touching the network.
func (s *session) restore() {
	s.run(func() {
		if err := s.coord.RestoreSnapshot(); err != nil {
			s.log.Warn("could not restore lock snapshot", "error", err)
		}
	})
}

// records returns the lock list in display order. Call after settle or
// restore.
func (s *session) records() []locks.Lock {
	var out []locks.Lock
	s.run(func() { out = s.coord.Records() })
	return out
}

// outcomeLog captures mutation failures published on the bus, keyed by
// path. Success produces no terminal event — the chained refresh confirms
// it — so absence of a failure after settle means the operation went
// through.
type outcomeLog struct {
	mu       sync.Mutex
	failures map[string]string
}

func newOutcomeLog() *outcomeLog {
	return &outcomeLog{failures: make(map[string]string)}
}

func (o *outcomeLog) add(e event.Event) {
	ev, ok := e.(event.LockStatusChangedEvent)
	if !ok || ev.Err == "" {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures[ev.Path] = ev.Err
}

func (o *outcomeLog) failureFor(path string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	msg, ok := o.failures[path]
	return msg, ok
}

// findTarget resolves a user-supplied argument against the lock list:
// exact path match first, then lock ID.
func findTarget(records []locks.Lock, arg string) (locks.Lock, bool) {
	for _, rec := range records {
		if rec.Path == arg {
			return rec, true
		}
	}
	for _, rec := range records {
		if rec.ID != "" && rec.ID == arg {
			return rec, true
		}
	}
	return locks.Lock{}, false
}
