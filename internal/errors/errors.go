// Package errors provides centralized error definitions and helpers for
// locksmith. It defines sentinel errors for the subsystems (tool execution,
// repository discovery, lock coordination), domain error types that carry
// command or repository context, and classification helpers used by callers
// to decide between retrying, degrading, and failing hard.
//
// Creating errors:
//
//	err := errors.NewCommandError("list locks failed", cause).WithArgs(args)
//	err := errors.NewRepoError("read HEAD", errors.ErrRepoStateCorrupt).WithPath(p)
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrRepoStateCorrupt) { ... }
//	var cmdErr *errors.CommandError
//	if errors.As(err, &cmdErr) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Tool-related sentinel errors
var (
	// ErrToolNotFound indicates the external LFS tool could not be located.
	ErrToolNotFound = New("lfs tool not found")
	// ErrToolTimeout indicates a tool invocation exceeded its deadline and was killed.
	ErrToolTimeout = New("lfs tool timed out")
	// ErrToolFailed indicates a tool invocation produced only error output.
	ErrToolFailed = New("lfs tool failed")
)

// Repository-related sentinel errors
var (
	// ErrNoRepository indicates no git repository was found at or above a path.
	ErrNoRepository = New("not inside a git repository")
	// ErrRepoStateCorrupt indicates a repository was believed present but a
	// required file (.git/HEAD or .git/config) is missing. This is the one
	// condition allowed to interrupt the caller's control flow.
	ErrRepoStateCorrupt = New("git repository state is corrupt")
	// ErrRepoGone indicates a previously discovered repository root no longer exists.
	ErrRepoGone = New("repository root no longer exists")
)

// Coordination-related sentinel errors
var (
	// ErrLockConflict indicates a lock was requested for a path that already
	// has a record (committed or pending).
	ErrLockConflict = New("path already locked or pending")
	// ErrUnlockConflict indicates an unlock was requested for a record that is
	// already pending another operation.
	ErrUnlockConflict = New("lock already has an operation in flight")
	// ErrUnknownLock indicates an unlock target does not exist in the store.
	ErrUnknownLock = New("no such lock")
	// ErrShuttingDown indicates an operation was rejected because the
	// coordinator is draining for shutdown.
	ErrShuttingDown = New("coordinator is shutting down")
)

// -----------------------------------------------------------------------------
// CommandError
// -----------------------------------------------------------------------------

// CommandError represents a failed external tool invocation. It carries the
// arguments of the command and any captured error lines so logs and user
// messages can show what was actually run.
type CommandError struct {
	message string
	cause   error
	Args    []string
	Stderr  []string
}

// NewCommandError creates a new CommandError.
func NewCommandError(message string, cause error) *CommandError {
	return &CommandError{message: message, cause: cause}
}

// WithArgs records the command arguments on the error.
func (e *CommandError) WithArgs(args []string) *CommandError {
	e.Args = args
	return e
}

// WithStderr records captured error lines on the error.
func (e *CommandError) WithStderr(lines []string) *CommandError {
	e.Stderr = lines
	return e
}

// Error returns the formatted error message.
func (e *CommandError) Error() string {
	prefix := "command error"
	if len(e.Args) > 0 {
		prefix = fmt.Sprintf("command error [%s]", strings.Join(e.Args, " "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error { return e.cause }

// Is reports whether this error matches the target.
func (e *CommandError) Is(target error) bool {
	if _, ok := target.(*CommandError); ok {
		return true
	}
	return e.cause != nil && errors.Is(e.cause, target)
}

// -----------------------------------------------------------------------------
// RepoError
// -----------------------------------------------------------------------------

// RepoError represents a repository discovery or state failure.
type RepoError struct {
	message string
	cause   error
	Path    string
}

// NewRepoError creates a new RepoError.
func NewRepoError(message string, cause error) *RepoError {
	return &RepoError{message: message, cause: cause}
}

// WithPath records the repository or file path on the error.
func (e *RepoError) WithPath(path string) *RepoError {
	e.Path = path
	return e
}

// Error returns the formatted error message.
func (e *RepoError) Error() string {
	prefix := "repository error"
	if e.Path != "" {
		prefix = fmt.Sprintf("repository error [%s]", e.Path)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Unwrap returns the underlying error.
func (e *RepoError) Unwrap() error { return e.cause }

// Is reports whether this error matches the target.
func (e *RepoError) Is(target error) bool {
	if _, ok := target.(*RepoError); ok {
		return true
	}
	return e.cause != nil && errors.Is(e.cause, target)
}

// -----------------------------------------------------------------------------
// Classification helpers
// -----------------------------------------------------------------------------

// IsRetryable reports whether the operation that produced err may succeed on
// a later attempt without intervention. Timeouts and plain command failures
// are transient; repository corruption and missing tools are not.
func IsRetryable(err error) bool {
	switch {
	case errors.Is(err, ErrToolTimeout):
		return true
	case errors.Is(err, ErrToolFailed):
		return true
	default:
		return false
	}
}

// IsConflict reports whether err is a lock/unlock conflict, i.e. the request
// was a no-op because another operation already covers the same target.
func IsConflict(err error) bool {
	return errors.Is(err, ErrLockConflict) || errors.Is(err, ErrUnlockConflict)
}
