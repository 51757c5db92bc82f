package locks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/finchley/locksmith/internal/assets"
	"github.com/finchley/locksmith/internal/errors"
	"github.com/finchley/locksmith/internal/event"
	"github.com/finchley/locksmith/internal/lfs"
	"github.com/finchley/locksmith/internal/logging"
)

// Commander is the slice of the LFS client the Coordinator dispatches
// through. *lfs.Client satisfies it; tests substitute a scripted fake.
type Commander interface {
	Locks(ctx context.Context) *lfs.ProcessResult
	Lock(ctx context.Context, path string) *lfs.ProcessResult
	Unlock(ctx context.Context, id string, force bool) *lfs.ProcessResult
}

// task is one in-flight background command. done closes only after the
// task has left its map and its continuation is queued, so a barrier that
// observed the task also observes anything the task chained.
type task struct {
	id   uuid.UUID
	done chan struct{}
}

// Coordinator dispatches lock, unlock and list commands as independent
// goroutines and funnels every result back onto one logical thread before
// it touches the Store. The logical thread is whatever goroutine the
// schedule function runs closures on: the TUI wires schedule to its update
// loop, the CLI and tests wire it to a Loop.
//
// Exported methods other than WaitForTasks, Shutdown, RefreshInFlight and
// MutatingCount must be called from the logical thread; the Store, the
// sort policy and the snapshot are touched nowhere else.
type Coordinator struct {
	client   Commander
	store    *Store
	resolver assets.Resolver
	bus      *event.Bus
	log      *logging.Logger
	schedule func(func())

	selfUser    string
	snapshotDir string

	mu         sync.Mutex
	mutating   map[uuid.UUID]*task
	refreshing map[uuid.UUID]*task
	closed     bool

	// Logical-thread state, no locking needed.
	autoRefresh        bool
	lastRefreshErrored bool
}

// CoordinatorConfig carries the collaborators a Coordinator needs. Client,
// Store and Schedule are required; a nil Resolver, Bus or Logger falls back
// to a no-op. An empty SnapshotDir disables persistence.
type CoordinatorConfig struct {
	Client      Commander
	Store       *Store
	Resolver    assets.Resolver
	Bus         *event.Bus
	Logger      *logging.Logger
	Schedule    func(func())
	SelfUser    string
	SnapshotDir string

	// DisableAutoRefresh starts with periodic refreshing off. Unlike
	// SetAutoRefresh it does not persist, so a construction-time default
	// cannot overwrite a snapshot that has not been restored yet. A
	// restored snapshot overrides it either way.
	DisableAutoRefresh bool
}

// NewCoordinator creates a Coordinator with auto-refresh enabled.
func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	log := cfg.Logger
	if log == nil {
		log = logging.NopLogger()
	}
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = assets.NopResolver{}
	}
	bus := cfg.Bus
	if bus == nil {
		bus = event.NewBus()
	}
	return &Coordinator{
		client:      cfg.Client,
		store:       cfg.Store,
		resolver:    resolver,
		bus:         bus,
		log:         log.WithComponent("coordinator"),
		schedule:    cfg.Schedule,
		selfUser:    cfg.SelfUser,
		snapshotDir: cfg.SnapshotDir,
		mutating:    make(map[uuid.UUID]*task),
		refreshing:  make(map[uuid.UUID]*task),
		autoRefresh: !cfg.DisableAutoRefresh,
	}
}

// Lock optimistically inserts a pending record for path, announces it, and
// dispatches a background "lock" command. A record already present for the
// path, pending or committed, makes the call a conflict no-op.
func (c *Coordinator) Lock(path string) error {
	if c.isClosed() {
		return errors.ErrShuttingDown
	}
	if path == "" {
		return errors.New("lock: empty path")
	}
	if _, ok := c.store.Get(path); ok {
		return fmt.Errorf("lock %q: %w", path, errors.ErrLockConflict)
	}

	c.store.Insert(Lock{
		Path:      path,
		User:      c.selfUser,
		AssetGUID: c.resolver.Resolve(path),
		Pending:   true,
	})
	c.bus.Publish(event.NewLockStatusChangedEvent(path, "", "lock", true, ""))
	c.log.Info("lock requested", "path", path)

	c.dispatchMutation(
		func(ctx context.Context) *lfs.ProcessResult { return c.client.Lock(ctx, path) },
		func(res *lfs.ProcessResult) { c.applyLockResult(path, res) },
	)
	return nil
}

// Unlock marks the record with the given server id pending and dispatches
// a background "unlock" command, forced when force is set. An unknown id
// is rejected, as is a record whose previous mutation is still in flight.
func (c *Coordinator) Unlock(id string, force bool) error {
	if c.isClosed() {
		return errors.ErrShuttingDown
	}
	rec, ok := c.store.ByID(id)
	if !ok {
		return fmt.Errorf("unlock %q: %w", id, errors.ErrUnknownLock)
	}
	if rec.Pending {
		return fmt.Errorf("unlock %q: %w", id, errors.ErrUnlockConflict)
	}

	c.store.SetPendingByID(id, true)
	c.bus.Publish(event.NewLockStatusChangedEvent(rec.Path, id, "unlock", true, ""))
	c.log.Info("unlock requested", "path", rec.Path, "id", id, "force", force)

	c.dispatchMutation(
		func(ctx context.Context) *lfs.ProcessResult { return c.client.Unlock(ctx, id, force) },
		func(res *lfs.ProcessResult) { c.applyUnlockResult(rec.Path, id, res) },
	)
	return nil
}

// Refresh dispatches an authoritative "list locks" command unconditionally.
// The auto-refresh gate does not apply here: an explicit refresh is how the
// user recovers once a failed refresh has latched the errored flag.
func (c *Coordinator) Refresh() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	t := c.registerRefreshLocked()
	c.mu.Unlock()
	go c.runRefresh(t)
}

// TryAutoRefresh dispatches a refresh on behalf of a periodic tick or a
// focus regain. It declines while a refresh is already in flight, while
// auto-refresh is disabled, and after an errored refresh, so a failing
// tool is not hammered once per tick. It reports whether a refresh was
// dispatched.
func (c *Coordinator) TryAutoRefresh() bool {
	c.mu.Lock()
	busy := c.closed || len(c.refreshing) > 0
	c.mu.Unlock()
	if busy || !c.autoRefresh || c.lastRefreshErrored {
		return false
	}
	c.Refresh()
	return true
}

// WaitForTasks blocks until every tracked task, mutating and refresh, has
// completed, including refreshes chained off mutations that finish during
// the wait. On return both task maps are empty and every continuation has
// been handed to the scheduler. Calling it with nothing in flight is a
// no-op. Call it from the goroutine tearing the host down, never from a
// scheduled closure: completing tasks need the scheduler to keep accepting
// their continuations while the barrier waits.
func (c *Coordinator) WaitForTasks() {
	for {
		c.mu.Lock()
		pending := make([]chan struct{}, 0, len(c.mutating)+len(c.refreshing))
		for _, t := range c.mutating {
			pending = append(pending, t.done)
		}
		for _, t := range c.refreshing {
			pending = append(pending, t.done)
		}
		c.mu.Unlock()

		if len(pending) == 0 {
			return
		}
		for _, done := range pending {
			<-done
		}
	}
}

// Shutdown rejects new work. In-flight tasks are unaffected; pair with
// WaitForTasks to drain them.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Coordinator) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// RefreshInFlight reports whether a list command is currently running.
func (c *Coordinator) RefreshInFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.refreshing) > 0
}

// MutatingCount returns the number of lock and unlock commands in flight.
func (c *Coordinator) MutatingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mutating)
}

// SetSort re-sorts the store and persists the new policy.
func (c *Coordinator) SetSort(key SortKey, ascending bool) {
	c.store.Sort(key, ascending)
	c.persist()
}

// SortKey returns the active sort key.
func (c *Coordinator) SortKey() SortKey { return c.store.SortKey() }

// SortAscending reports the active sort direction.
func (c *Coordinator) SortAscending() bool { return c.store.Ascending() }

// SetAutoRefresh toggles periodic refreshing and persists the choice.
func (c *Coordinator) SetAutoRefresh(enabled bool) {
	c.autoRefresh = enabled
	c.persist()
}

// AutoRefresh reports whether periodic refreshes are enabled.
func (c *Coordinator) AutoRefresh() bool { return c.autoRefresh }

// LastRefreshErrored reports whether the most recently applied refresh
// ended in error. The flag clears when a clean refresh lands.
func (c *Coordinator) LastRefreshErrored() bool { return c.lastRefreshErrored }

// Records returns the store's records in display order.
func (c *Coordinator) Records() []Lock { return c.store.Records() }

// RestoreSnapshot loads the persisted snapshot, if any, and applies it.
// Missing or stale-format state is not an error: the next refresh rebuilds
// everything the snapshot would have provided.
func (c *Coordinator) RestoreSnapshot() error {
	if c.snapshotDir == "" {
		return nil
	}
	snap, err := LoadSnapshot(c.snapshotDir)
	if err != nil {
		return err
	}
	c.ApplySnapshot(snap)
	return nil
}

// ApplySnapshot restores persisted state: the sort policy, the
// auto-refresh flag and the last known lock list. A nil snapshot leaves
// defaults in place. The restored list is announced so observers render it
// before the first refresh lands.
func (c *Coordinator) ApplySnapshot(snap *Snapshot) {
	if snap == nil {
		return
	}
	c.autoRefresh = snap.AutoRefresh
	c.store.Sort(snap.SortKey, snap.SortAscending)
	c.store.ReplaceAll(snap.Locks)
	c.bus.Publish(event.NewLocksRefreshedEvent(c.store.Len(), false))
}

// dispatchMutation registers a mutating task and runs the command on its
// own goroutine. The completion order is load-bearing: leaving the
// mutating map and deciding the chained refresh happen inside one critical
// section, so of N concurrent mutations exactly one observes itself as
// last and dispatches the trailing refresh; the chained task is registered
// before done closes, so a barrier that saw this task cannot miss it; the
// continuation is scheduled before done closes, so a returned barrier
// implies every continuation is already queued.
func (c *Coordinator) dispatchMutation(run func(context.Context) *lfs.ProcessResult, apply func(*lfs.ProcessResult)) {
	t := &task{id: uuid.New(), done: make(chan struct{})}
	c.mu.Lock()
	c.mutating[t.id] = t
	c.mu.Unlock()

	go func() {
		res := run(context.Background())

		c.mu.Lock()
		delete(c.mutating, t.id)
		remaining := len(c.mutating)
		var chained *task
		if !res.HasErrors() && remaining == 0 {
			chained = c.registerRefreshLocked()
		}
		c.mu.Unlock()

		if chained != nil {
			go c.runRefresh(chained)
		} else {
			// Short-circuited chain: a failed mutation must not trigger a
			// list call, and a mutation that is not the last to finish
			// leaves the single trailing refresh to whichever is. The
			// store pipeline still receives the no-result sentinel.
			c.schedule(func() { c.applyRefreshResult(nil) })
		}
		c.schedule(func() { apply(res) })
		close(t.done)
	}()
}

// registerRefreshLocked creates and tracks a refresh task. Callers hold mu.
func (c *Coordinator) registerRefreshLocked() *task {
	t := &task{id: uuid.New(), done: make(chan struct{})}
	c.refreshing[t.id] = t
	return t
}

// runRefresh executes the list command for an already registered refresh
// task. Map removal precedes the done close for the same barrier reasons
// as in dispatchMutation.
func (c *Coordinator) runRefresh(t *task) {
	res := c.client.Locks(context.Background())

	c.mu.Lock()
	delete(c.refreshing, t.id)
	c.mu.Unlock()

	c.schedule(func() { c.applyRefreshResult(res) })
	close(t.done)
}

// applyLockResult rolls back the optimistic record when the lock command
// failed. Success changes nothing here: the chained refresh delivers the
// authoritative record, committed and carrying its server id.
func (c *Coordinator) applyLockResult(path string, res *lfs.ProcessResult) {
	if !res.HasErrors() {
		return
	}
	errMsg := strings.Join(res.ErrLines, "; ")
	c.store.Remove(path)
	c.bus.Publish(event.NewLockStatusChangedEvent(path, "", "lock", false, errMsg))
	c.log.Warn("lock failed", "path", path, "error", errMsg)
}

// applyUnlockResult clears the pending mark when the unlock command
// failed; the record stays, still held. Success is confirmed by the
// chained refresh dropping the record from the authoritative list.
func (c *Coordinator) applyUnlockResult(path, id string, res *lfs.ProcessResult) {
	if !res.HasErrors() {
		return
	}
	errMsg := strings.Join(res.ErrLines, "; ")
	c.store.SetPendingByID(id, false)
	c.bus.Publish(event.NewLockStatusChangedEvent(path, id, "unlock", false, errMsg))
	c.log.Warn("unlock failed", "path", path, "id", id, "error", errMsg)
}

// applyRefreshResult merges one refresh outcome into the store on the
// logical thread. A nil result is the collapsed-chain sentinel and changes
// nothing. Errored results latch lastRefreshErrored, which stops automatic
// refreshes until an explicit one clears it. Of the errored shapes, one
// with data keeps the previous list since partial output is not
// authoritative, while one without data clears the list so stale records
// are not presented as current.
func (c *Coordinator) applyRefreshResult(res *lfs.ProcessResult) {
	if res == nil {
		return
	}
	switch res.Classify() {
	case lfs.Clean:
		c.store.ReplaceAll(c.parseLocks(res.OutLines))
		c.lastRefreshErrored = false
		c.persist()
		c.bus.Publish(event.NewLocksRefreshedEvent(c.store.Len(), false))
		c.log.Debug("locks refreshed", "count", c.store.Len())
	case lfs.ErroredWithData:
		c.lastRefreshErrored = true
		c.bus.Publish(event.NewLocksRefreshedEvent(c.store.Len(), true))
		c.log.Warn("refresh errored, keeping previous list", "errors", len(res.ErrLines))
	case lfs.ErroredNoData:
		c.store.Clear()
		c.lastRefreshErrored = true
		c.persist()
		c.bus.Publish(event.NewLocksRefreshedEvent(0, true))
		c.log.Warn("refresh errored with no data, cleared lock list", "errors", len(res.ErrLines))
	}
}

// parseLocks converts raw list output into records, resolving each path to
// its host asset identifier. Lines that do not match the lock shape are
// progress noise from the tool; they are logged and skipped rather than
// failing the whole refresh.
func (c *Coordinator) parseLocks(lines []string) []Lock {
	records := make([]Lock, 0, len(lines))
	for _, line := range lines {
		parsed, ok := lfs.ParseLockLine(line)
		if !ok {
			if strings.TrimSpace(line) != "" {
				c.log.Debug("skipping unparseable lock line", "line", line)
			}
			continue
		}
		records = append(records, Lock{
			Path:      parsed.Path,
			ID:        parsed.ID,
			User:      parsed.User,
			AssetGUID: c.resolver.Resolve(parsed.Path),
		})
	}
	return records
}

// persist writes the snapshot. Pending records are excluded: a command in
// flight at save time must not reappear as a committed lock on restart.
func (c *Coordinator) persist() {
	if c.snapshotDir == "" {
		return
	}
	all := c.store.Records()
	committed := make([]Lock, 0, len(all))
	for _, rec := range all {
		if !rec.Pending {
			committed = append(committed, rec)
		}
	}
	snap := &Snapshot{
		Version:       snapshotVersion,
		SortKey:       c.store.SortKey(),
		SortAscending: c.store.Ascending(),
		AutoRefresh:   c.autoRefresh,
		Locks:         committed,
	}
	if err := SaveSnapshot(c.snapshotDir, snap); err != nil {
		c.log.Error("failed to persist lock snapshot", "error", err)
	}
}
