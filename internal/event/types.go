// Package event defines the events Locksmith components publish to
// communicate without direct dependencies: the lock coordinator announces
// store changes, the lifecycle controller announces repository changes, and
// the TUI (or any other observer) subscribes.
package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "locks.refreshed").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers. Subscribers match on these.
const (
	TypeLocksRefreshed    = "locks.refreshed"
	TypeLockStatusChanged = "lock.status_changed"
	TypeBranchChanged     = "repo.branch_changed"
)

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// LocksRefreshedEvent is emitted after a refresh result has been applied to
// the lock store: the list was rebuilt from authoritative output, or cleared
// because the server reported no locks (or errored without data).
type LocksRefreshedEvent struct {
	baseEvent
	Count   int  // number of locks now in the store
	Errored bool // the producing refresh attempt ended in error
}

// NewLocksRefreshedEvent creates a LocksRefreshedEvent.
func NewLocksRefreshedEvent(count int, errored bool) LocksRefreshedEvent {
	return LocksRefreshedEvent{
		baseEvent: newBaseEvent(TypeLocksRefreshed),
		Count:     count,
		Errored:   errored,
	}
}

// LockStatusChangedEvent is emitted when a single lock's local status
// changes ahead of server confirmation: an optimistic pending insert, a
// record marked pending for unlock, or a failed mutation rolled back.
type LockStatusChangedEvent struct {
	baseEvent
	Path    string // repo-relative path of the affected lock
	LockID  string // server lock ID, empty while creation is pending
	Action  string // "lock" or "unlock"
	Pending bool   // true when the mutation is still in flight
	Err     string // non-empty when the mutation failed and was rolled back
}

// NewLockStatusChangedEvent creates a LockStatusChangedEvent.
func NewLockStatusChangedEvent(path, lockID, action string, pending bool, errMsg string) LockStatusChangedEvent {
	return LockStatusChangedEvent{
		baseEvent: newBaseEvent(TypeLockStatusChanged),
		Path:      path,
		LockID:    lockID,
		Action:    action,
		Pending:   pending,
		Err:       errMsg,
	}
}

// BranchChangedEvent is emitted when the repository's checked-out branch
// changes, either noticed by the periodic reload or by the HEAD watcher.
type BranchChangedEvent struct {
	baseEvent
	Branch   string // branch now checked out (or short SHA when detached)
	Previous string // branch before the change, may be empty on first read
}

// NewBranchChangedEvent creates a BranchChangedEvent.
func NewBranchChangedEvent(branch, previous string) BranchChangedEvent {
	return BranchChangedEvent{
		baseEvent: newBaseEvent(TypeBranchChanged),
		Branch:    branch,
		Previous:  previous,
	}
}
