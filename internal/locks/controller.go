package locks

import (
	"sync"
	"time"

	"github.com/finchley/locksmith/internal/errors"
	"github.com/finchley/locksmith/internal/event"
	"github.com/finchley/locksmith/internal/logging"
	"github.com/finchley/locksmith/internal/repo"
)

// Controller bridges host lifecycle signals to the Coordinator: it restores
// the snapshot and kicks the first refresh on Start, turns the periodic
// tick and HEAD file changes into gated refreshes, and drains in-flight
// work on Stop so no background command is orphaned by a teardown.
type Controller struct {
	coord    *Coordinator
	repoCtx  *repo.Context
	bus      *event.Bus
	log      *logging.Logger
	schedule func(func())

	interval  time.Duration
	watchHead bool

	mu       sync.Mutex
	started  bool
	watcher  *repo.Watcher
	tickDone chan struct{}

	stopCh   chan struct{}
	stopOnce sync.Once
}

// ControllerConfig carries the collaborators a Controller needs. A zero
// Interval disables the periodic tick; WatchHead false disables the HEAD
// file watcher. Both are still running when left at their defaults via
// NewController.
type ControllerConfig struct {
	Coordinator *Coordinator
	Repo        *repo.Context
	Bus         *event.Bus
	Logger      *logging.Logger
	Schedule    func(func())
	Interval    time.Duration
	WatchHead   bool
}

// NewController creates a Controller. It does nothing until Start.
func NewController(cfg ControllerConfig) *Controller {
	log := cfg.Logger
	if log == nil {
		log = logging.NopLogger()
	}
	bus := cfg.Bus
	if bus == nil {
		bus = event.NewBus()
	}
	return &Controller{
		coord:     cfg.Coordinator,
		repoCtx:   cfg.Repo,
		bus:       bus,
		log:       log.WithComponent("controller"),
		schedule:  cfg.Schedule,
		interval:  cfg.Interval,
		watchHead: cfg.WatchHead,
		stopCh:    make(chan struct{}),
	}
}

// Start restores persisted state, attempts the initial refresh and begins
// the tick and HEAD watch sources. It may be called once.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return errors.New("controller already started")
	}
	c.started = true
	c.mu.Unlock()

	c.schedule(func() {
		if err := c.coord.RestoreSnapshot(); err != nil {
			c.log.Warn("could not restore lock snapshot", "error", err)
		}
		c.coord.TryAutoRefresh()
	})

	if c.interval > 0 {
		done := make(chan struct{})
		c.mu.Lock()
		c.tickDone = done
		c.mu.Unlock()
		go c.tickLoop(done)
	}

	if c.watchHead {
		w, err := repo.NewWatcher(c.repoCtx.GitDir, func() {
			c.schedule(c.poll)
		})
		if err != nil {
			// The tick still covers branch changes, just more slowly.
			c.log.Warn("HEAD watcher unavailable", "error", err)
		} else {
			c.mu.Lock()
			c.watcher = w
			c.mu.Unlock()
			w.Start()
		}
	}

	c.log.Info("controller started",
		"interval", c.interval.String(),
		"watch_head", c.watchHead,
	)
	return nil
}

// FocusGained handles the host regaining focus: repository state may have
// moved underneath the app while it was backgrounded. Must be called from
// the logical thread.
func (c *Controller) FocusGained() {
	c.poll()
}

// Stop halts the tick and watcher sources, rejects new coordinator work
// and blocks until every in-flight background command has completed. It is
// idempotent.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)

		c.mu.Lock()
		watcher := c.watcher
		tickDone := c.tickDone
		c.mu.Unlock()

		if watcher != nil {
			watcher.Stop()
		}
		if tickDone != nil {
			<-tickDone
		}

		c.coord.Shutdown()
		c.coord.WaitForTasks()
		c.log.Info("controller stopped")
	})
}

func (c *Controller) tickLoop(done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.schedule(c.poll)
		case <-c.stopCh:
			return
		}
	}
}

// poll re-reads repository state and attempts a gated refresh. Ticks, HEAD
// changes and focus regains all funnel here on the logical thread.
func (c *Controller) poll() {
	if !c.reloadRepoState() {
		return
	}
	c.coord.TryAutoRefresh()
}

// reloadRepoState re-reads the branch, announcing a change, and reports
// whether the repository is still usable for a refresh.
func (c *Controller) reloadRepoState() bool {
	if !c.repoCtx.Exists() {
		c.log.Warn("repository root missing, skipping refresh", "root", c.repoCtx.Root)
		return false
	}
	prev := c.repoCtx.Branch
	branch, err := c.repoCtx.ReloadBranch()
	if err != nil {
		c.log.Warn("could not reload branch", "error", err)
		return false
	}
	if branch != prev {
		c.bus.Publish(event.NewBranchChangedEvent(branch, prev))
		c.log.Info("branch changed", "branch", branch, "previous", prev)
	}
	return true
}
