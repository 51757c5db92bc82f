// Package lfs wraps the external git-lfs tool: it runs lock commands with a
// timeout, classifies their output, strips known-ignorable diagnostics,
// heals a corrupt local lock cache by deleting it and retrying once, and
// parses lock listing lines.
package lfs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/finchley/locksmith/internal/logging"
)

// ignorableDiagnostic marks stderr noise emitted by older tool versions on
// filesystems without xattr support. Stripped only when stdout carried data,
// so a fully failed call always leaves some signal.
const ignorableDiagnostic = "operation not supported"

// Client invokes the git-lfs tool for one repository. All invocations share
// the repository root as working directory, a common timeout, and the
// self-healing retry policy around the local lock cache.
type Client struct {
	tool          string
	workDir       string
	lockCachePath string
	timeout       time.Duration
	runner        ProcessRunner
	log           *logging.Logger
}

// NewClient creates a Client that spawns real processes.
func NewClient(tool string, timeout time.Duration, workDir, lockCachePath string, log *logging.Logger) *Client {
	return NewClientWithRunner(tool, timeout, workDir, lockCachePath, log, NewExecRunner())
}

// NewClientWithRunner creates a Client with a caller-supplied runner.
// Tests use this to script process outcomes.
func NewClientWithRunner(tool string, timeout time.Duration, workDir, lockCachePath string, log *logging.Logger, runner ProcessRunner) *Client {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Client{
		tool:          tool,
		workDir:       workDir,
		lockCachePath: lockCachePath,
		timeout:       timeout,
		runner:        runner,
		log:           log,
	}
}

// Available reports whether the configured tool can be located. Callers use
// this as a capability flag instead of treating a missing tool as an error.
func (c *Client) Available() bool {
	_, err := exec.LookPath(c.tool)
	return err == nil
}

// Locks runs the lock listing command.
func (c *Client) Locks(ctx context.Context) *ProcessResult {
	return c.Execute(ctx, "locks")
}

// Lock acquires a lock on a repo-relative path.
func (c *Client) Lock(ctx context.Context, path string) *ProcessResult {
	return c.Execute(ctx, "lock", path)
}

// Unlock releases a lock by server ID, optionally forcing release of a lock
// held by another user.
func (c *Client) Unlock(ctx context.Context, id string, force bool) *ProcessResult {
	args := []string{"unlock", "--id=" + id}
	if force {
		args = append(args, "--force")
	}
	return c.Execute(ctx, args...)
}

// Execute performs one logical tool call: run, filter ignorable
// diagnostics, heal a corrupt lock cache by deleting it and re-running
// exactly once, and report every residual error line. The returned result
// is never nil; start failures surface as error lines, not panics or
// returned errors.
func (c *Client) Execute(ctx context.Context, args ...string) *ProcessResult {
	c.log.Debug("executing lfs command", "args", strings.Join(args, " "))

	result := c.attempt(ctx, args)

	if c.mentionsLockCache(result) {
		if healErr := c.removeLockCache(); healErr != nil {
			result.ErrLines = append(result.ErrLines,
				"failed to remove lock cache "+c.lockCachePath+": "+healErr.Error())
		} else {
			c.log.Info("removed corrupt lock cache, retrying", "path", c.lockCachePath)
			retry := c.attempt(ctx, args)
			// Latest stdout is authoritative; errors accumulate so the
			// first attempt's signal is not lost.
			merged := &ProcessResult{
				OutLines: retry.OutLines,
				ErrLines: append(result.ErrLines, retry.ErrLines...),
			}
			result = merged
		}
	}

	c.reportErrors(ctx, args, result)
	return result
}

// attempt performs a single run plus the stdout-gated diagnostic filter.
func (c *Client) attempt(ctx context.Context, args []string) *ProcessResult {
	result, err := c.runner.Run(ctx, c.workDir, c.tool, args, c.timeout)
	if err != nil {
		// Could not start at all; degrade to an errored-no-data result.
		failed := NewProcessResult()
		failed.ErrLines = append(failed.ErrLines, err.Error())
		return failed
	}

	c.filterIgnorable(result)
	return result
}

// filterIgnorable strips known-ignorable diagnostics from the error lines,
// but only when stdout produced data: a fully failed call keeps every line.
func (c *Client) filterIgnorable(result *ProcessResult) {
	if !result.HasData() || !result.HasErrors() {
		return
	}

	kept := result.ErrLines[:0]
	for _, line := range result.ErrLines {
		if strings.Contains(strings.ToLower(line), ignorableDiagnostic) {
			continue
		}
		kept = append(kept, line)
	}
	result.ErrLines = kept
}

// mentionsLockCache reports whether any error line names the local lock
// cache file, the signature of the corruption the delete-and-retry heals.
func (c *Client) mentionsLockCache(result *ProcessResult) bool {
	if c.lockCachePath == "" {
		return false
	}
	base := filepath.Base(c.lockCachePath)
	for _, line := range result.ErrLines {
		if strings.Contains(line, c.lockCachePath) || strings.Contains(line, base) {
			return true
		}
	}
	return false
}

// removeLockCache deletes the local lock cache. A cache that is already
// gone counts as removed.
func (c *Client) removeLockCache() error {
	err := os.Remove(c.lockCachePath)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// reportErrors logs every residual error line, tagged with the command
// arguments. Lines produced by a teardown-time abort are demoted to debug;
// an interrupted shutdown command is expected, not an incident.
func (c *Client) reportErrors(ctx context.Context, args []string, result *ProcessResult) {
	if !result.HasErrors() {
		return
	}

	argsStr := c.tool + " " + strings.Join(args, " ")
	for _, line := range result.ErrLines {
		if ctx.Err() != nil {
			c.log.Debug("lfs command interrupted", "args", argsStr, "line", line)
			continue
		}
		c.log.Error("lfs command error", "args", argsStr, "line", line)
	}
}
