package locks

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/finchley/locksmith/internal/errors"
	"github.com/finchley/locksmith/internal/event"
	"github.com/finchley/locksmith/internal/repo"
)

func writeHead(t *testing.T, gitDir, branch string) {
	t.Helper()
	data := []byte("ref: refs/heads/" + branch + "\n")
	if err := os.WriteFile(filepath.Join(gitDir, "HEAD"), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func makeRepoContext(t *testing.T, branch string) *repo.Context {
	t.Helper()
	root := t.TempDir()
	gitDir := filepath.Join(root, ".git")
	if err := os.MkdirAll(gitDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeHead(t, gitDir, branch)
	return &repo.Context{
		Root:      root,
		GitDir:    gitDir,
		CommonDir: gitDir,
		Branch:    branch,
		User:      "selfuser",
	}
}

type controllerFixture struct {
	loop    *Loop
	store   *Store
	coord   *Coordinator
	ctrl    *Controller
	fake    *fakeCommander
	events  *eventLog
	repoCtx *repo.Context
	snapDir string
}

func newControllerFixture(t *testing.T, fake *fakeCommander, interval time.Duration, watchHead bool) *controllerFixture {
	t.Helper()

	loop := NewLoop()
	t.Cleanup(loop.Close)

	repoCtx := makeRepoContext(t, "main")
	snapDir := filepath.Join(t.TempDir(), "lfs")
	store := NewStore(StylePOSIX)
	bus := event.NewBus()
	elog := &eventLog{}
	bus.SubscribeAll(elog.add)

	coord := NewCoordinator(CoordinatorConfig{
		Client:      fake,
		Store:       store,
		Bus:         bus,
		Schedule:    loop.Schedule,
		SelfUser:    repoCtx.User,
		SnapshotDir: snapDir,
	})
	ctrl := NewController(ControllerConfig{
		Coordinator: coord,
		Repo:        repoCtx,
		Bus:         bus,
		Schedule:    loop.Schedule,
		Interval:    interval,
		WatchHead:   watchHead,
	})
	t.Cleanup(ctrl.Stop)

	return &controllerFixture{
		loop:    loop,
		store:   store,
		coord:   coord,
		ctrl:    ctrl,
		fake:    fake,
		events:  elog,
		repoCtx: repoCtx,
		snapDir: snapDir,
	}
}

func (fx *controllerFixture) onLoop(fn func()) {
	fx.loop.Schedule(fn)
	fx.loop.Flush()
}

func (fx *controllerFixture) settle() {
	fx.loop.Flush()
	fx.coord.WaitForTasks()
	fx.loop.Flush()
}

func branchEvents(l *eventLog) []event.BranchChangedEvent {
	var out []event.BranchChangedEvent
	for _, e := range l.all() {
		if b, ok := e.(event.BranchChangedEvent); ok {
			out = append(out, b)
		}
	}
	return out
}

func eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestController_Start_RestoresSnapshotAndKicksRefresh(t *testing.T) {
	fake := newFakeCommander()
	fake.queueList(cleanList("Assets/fresh.png\tmika\tID:5"))
	fx := newControllerFixture(t, fake, 0, false)

	err := SaveSnapshot(fx.snapDir, &Snapshot{
		SortKey:       SortByPath,
		SortAscending: true,
		AutoRefresh:   true,
		Locks:         []Lock{{Path: "Assets/stale.png", ID: "1", User: "mika"}},
	})
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	if err := fx.ctrl.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	fx.settle()

	if got := fx.fake.listCallCount(); got != 1 {
		t.Errorf("list commands = %d, want 1 initial refresh", got)
	}

	var records []Lock
	fx.onLoop(func() { records = fx.coord.Records() })
	if len(records) != 1 || records[0].Path != "Assets/fresh.png" {
		t.Errorf("records = %+v, want the refreshed list, not the snapshot", records)
	}
}

func TestController_Start_HonorsRestoredAutoRefreshOff(t *testing.T) {
	fake := newFakeCommander()
	fx := newControllerFixture(t, fake, 0, false)

	err := SaveSnapshot(fx.snapDir, &Snapshot{
		SortKey:       SortByPath,
		SortAscending: true,
		AutoRefresh:   false,
		Locks:         []Lock{{Path: "Assets/kept.png", ID: "1", User: "mika"}},
	})
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	if err := fx.ctrl.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	fx.settle()

	if got := fx.fake.listCallCount(); got != 0 {
		t.Errorf("list commands = %d, want 0 with auto-refresh restored off", got)
	}

	var records []Lock
	fx.onLoop(func() { records = fx.coord.Records() })
	if len(records) != 1 || records[0].Path != "Assets/kept.png" {
		t.Errorf("records = %+v, want the snapshot list", records)
	}
}

func TestController_StartTwiceFails(t *testing.T) {
	fx := newControllerFixture(t, newFakeCommander(), 0, false)

	if err := fx.ctrl.Start(); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if err := fx.ctrl.Start(); err == nil {
		t.Error("second Start succeeded")
	}
	fx.settle()
}

func TestController_FocusGained_DetectsBranchChange(t *testing.T) {
	fake := newFakeCommander()
	fx := newControllerFixture(t, fake, 0, false)

	if err := fx.ctrl.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	fx.settle()

	writeHead(t, fx.repoCtx.GitDir, "feature/locks")
	fx.onLoop(fx.ctrl.FocusGained)
	fx.settle()

	branches := branchEvents(fx.events)
	if len(branches) != 1 {
		t.Fatalf("branch events = %d, want 1", len(branches))
	}
	if branches[0].Branch != "feature/locks" || branches[0].Previous != "main" {
		t.Errorf("branch event = %+v, want feature/locks from main", branches[0])
	}

	var branch string
	fx.onLoop(func() { branch = fx.repoCtx.Branch })
	if branch != "feature/locks" {
		t.Errorf("cached branch = %q, want %q", branch, "feature/locks")
	}
}

func TestController_FocusGained_SkipsWhenRepoGone(t *testing.T) {
	fake := newFakeCommander()
	fx := newControllerFixture(t, fake, 0, false)

	if err := fx.ctrl.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	fx.settle()
	before := fx.fake.listCallCount()

	if err := os.RemoveAll(fx.repoCtx.Root); err != nil {
		t.Fatal(err)
	}
	fx.onLoop(fx.ctrl.FocusGained)
	fx.settle()

	if got := fx.fake.listCallCount(); got != before {
		t.Errorf("list commands = %d, want %d (no refresh without a repository)", got, before)
	}
}

func TestController_TickerPolls(t *testing.T) {
	fake := newFakeCommander()
	fx := newControllerFixture(t, fake, 20*time.Millisecond, false)

	if err := fx.ctrl.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// One refresh comes from Start itself; further ones prove the ticker.
	eventually(t, 3*time.Second, func() bool {
		return fx.fake.listCallCount() >= 3
	}, "ticker never drove repeated refreshes")

	fx.ctrl.Stop()
}

func TestController_HeadWatcher_NoticesBranchSwitch(t *testing.T) {
	fake := newFakeCommander()
	fx := newControllerFixture(t, fake, 0, true)

	if err := fx.ctrl.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	fx.settle()

	writeHead(t, fx.repoCtx.GitDir, "hotfix")

	eventually(t, 3*time.Second, func() bool {
		return len(branchEvents(fx.events)) > 0
	}, "HEAD change never produced a branch event")

	branches := branchEvents(fx.events)
	if branches[0].Branch != "hotfix" || branches[0].Previous != "main" {
		t.Errorf("branch event = %+v, want hotfix from main", branches[0])
	}
}

func TestController_Stop_DrainsInFlightWork(t *testing.T) {
	fake := newFakeCommander()
	fake.mutGate = make(chan struct{})
	// First result feeds the refresh Start kicks off; it must not mention
	// the path locked below or the optimistic insert could conflict with
	// an already-applied record. The second feeds the chained refresh.
	fake.queueList(cleanList(), cleanList("Assets/a.png\tselfuser\tID:3"))
	fx := newControllerFixture(t, fake, 0, false)

	if err := fx.ctrl.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	fx.onLoop(func() {
		if err := fx.coord.Lock("Assets/a.png"); err != nil {
			t.Errorf("Lock failed: %v", err)
		}
	})

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(fake.mutGate)
	}()
	fx.ctrl.Stop()

	if got := fx.coord.MutatingCount(); got != 0 {
		t.Errorf("MutatingCount = %d after Stop, want 0", got)
	}
	if fx.coord.RefreshInFlight() {
		t.Error("refresh still in flight after Stop")
	}
	if got := fake.lockCallCount(); got != 1 {
		t.Errorf("lock commands = %d, want 1 (command ran to completion)", got)
	}
	if got := fake.listCallCount(); got != 2 {
		t.Errorf("list commands = %d, want 2 (initial refresh plus the drained chained one)", got)
	}

	var err error
	fx.onLoop(func() { err = fx.coord.Lock("Assets/b.png") })
	if !errors.Is(err, errors.ErrShuttingDown) {
		t.Errorf("post-Stop Lock err = %v, want ErrShuttingDown", err)
	}

	fx.ctrl.Stop() // idempotent
}
