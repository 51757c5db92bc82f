package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// -----------------------------------------------------------------------------
// CommandError Tests
// -----------------------------------------------------------------------------

func TestNewCommandError(t *testing.T) {
	cause := ErrToolFailed
	err := NewCommandError("list locks failed", cause)

	if err.message != "list locks failed" {
		t.Errorf("message = %q, want %q", err.message, "list locks failed")
	}
	if err.cause != cause {
		t.Errorf("cause = %v, want %v", err.cause, cause)
	}
}

func TestCommandError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *CommandError
		want string
	}{
		{
			name: "plain",
			err:  NewCommandError("boom", nil),
			want: "command error: boom",
		},
		{
			name: "with args",
			err:  NewCommandError("boom", nil).WithArgs([]string{"locks"}),
			want: "command error [locks]: boom",
		},
		{
			name: "with cause",
			err:  NewCommandError("boom", ErrToolTimeout).WithArgs([]string{"lock", "a.png"}),
			want: "command error [lock a.png]: boom: lfs tool timed out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommandError_Is(t *testing.T) {
	err := NewCommandError("boom", ErrToolTimeout)

	if !errors.Is(err, ErrToolTimeout) {
		t.Error("errors.Is(err, ErrToolTimeout) = false, want true")
	}
	if errors.Is(err, ErrToolNotFound) {
		t.Error("errors.Is(err, ErrToolNotFound) = true, want false")
	}

	var cmdErr *CommandError
	wrapped := fmt.Errorf("outer: %w", err)
	if !errors.As(wrapped, &cmdErr) {
		t.Error("errors.As failed to find *CommandError in wrapped chain")
	}
	if len(cmdErr.Args) != 0 {
		t.Errorf("Args = %v, want empty", cmdErr.Args)
	}
}

func TestCommandError_WithStderr(t *testing.T) {
	lines := []string{"Lock failed", "hint: try --force"}
	err := NewCommandError("boom", nil).WithStderr(lines)

	if len(err.Stderr) != 2 {
		t.Fatalf("Stderr lines = %d, want 2", len(err.Stderr))
	}
	if err.Stderr[0] != "Lock failed" {
		t.Errorf("Stderr[0] = %q, want %q", err.Stderr[0], "Lock failed")
	}
}

// -----------------------------------------------------------------------------
// RepoError Tests
// -----------------------------------------------------------------------------

func TestRepoError_Error(t *testing.T) {
	err := NewRepoError("read HEAD", ErrRepoStateCorrupt).WithPath("/work/game")

	got := err.Error()
	if !strings.Contains(got, "/work/game") {
		t.Errorf("Error() = %q, want path included", got)
	}
	if !strings.Contains(got, "git repository state is corrupt") {
		t.Errorf("Error() = %q, want cause included", got)
	}
	if !errors.Is(err, ErrRepoStateCorrupt) {
		t.Error("errors.Is(err, ErrRepoStateCorrupt) = false, want true")
	}
}

// -----------------------------------------------------------------------------
// Classification Tests
// -----------------------------------------------------------------------------

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"timeout", ErrToolTimeout, true},
		{"tool failed", ErrToolFailed, true},
		{"wrapped timeout", fmt.Errorf("run: %w", ErrToolTimeout), true},
		{"corrupt repo", ErrRepoStateCorrupt, false},
		{"tool missing", ErrToolNotFound, false},
		{"nil-adjacent", errors.New("other"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsConflict(t *testing.T) {
	if !IsConflict(ErrLockConflict) {
		t.Error("IsConflict(ErrLockConflict) = false, want true")
	}
	if !IsConflict(fmt.Errorf("lock: %w", ErrUnlockConflict)) {
		t.Error("IsConflict(wrapped ErrUnlockConflict) = false, want true")
	}
	if IsConflict(ErrUnknownLock) {
		t.Error("IsConflict(ErrUnknownLock) = true, want false")
	}
}
