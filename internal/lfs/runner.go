package lfs

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/finchley/locksmith/internal/errors"
)

// ProcessRunner abstracts process execution for testability. Implementations
// run one process to completion (or until the deadline) and return its
// output; they never retry or filter.
type ProcessRunner interface {
	// Run executes tool with args in workDir, capturing stdout and stderr
	// line-by-line as they arrive. A process still running after timeout is
	// killed and the result gains a synthetic error line; kill failures are
	// swallowed. The returned error is non-nil only when the process could
	// not be started at all.
	Run(ctx context.Context, workDir, tool string, args []string, timeout time.Duration) (*ProcessResult, error)
}

// ExecRunner runs real processes via os/exec.
type ExecRunner struct{}

// NewExecRunner creates an ExecRunner.
func NewExecRunner() *ExecRunner { return &ExecRunner{} }

// Run implements ProcessRunner.
func (r *ExecRunner) Run(ctx context.Context, workDir, tool string, args []string, timeout time.Duration) (*ProcessResult, error) {
	result := NewProcessResult()

	cmd := exec.Command(tool, args...)
	cmd.Dir = workDir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.NewCommandError("opening stdout pipe", err).WithArgs(args)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.NewCommandError("opening stderr pipe", err).WithArgs(args)
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, errors.NewCommandError("starting lfs tool", errors.ErrToolNotFound).WithArgs(args)
		}
		return nil, errors.NewCommandError("starting lfs tool", err).WithArgs(args)
	}

	// One goroutine per pipe so lines are collected live, not after exit.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		scanLines(stdout, &result.OutLines)
	}()
	go func() {
		defer wg.Done()
		scanLines(stderr, &result.ErrLines)
	}()

	// Wait must not be called until both pipes are drained.
	done := make(chan struct{})
	go func() {
		wg.Wait()
		_ = cmd.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		// A non-zero exit is not special: failures arrive as stderr lines.

	case <-timer.C:
		// The process may have exited in a race; kill failures are swallowed.
		_ = cmd.Process.Kill()
		<-done
		result.ErrLines = append(result.ErrLines, fmt.Sprintf(
			"process timed out after %dms: %s %s",
			timeout.Milliseconds(), tool, strings.Join(args, " ")))

	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		result.ErrLines = append(result.ErrLines, fmt.Sprintf(
			"process aborted: %v", ctx.Err()))
	}

	return result, nil
}

// scanLines appends each line from r to dst, tolerating very long lines and
// CRLF output. dst is owned by exactly one scanning goroutine.
func scanLines(r io.Reader, dst *[]string) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		*dst = append(*dst, strings.TrimSuffix(scanner.Text(), "\r"))
	}
}
