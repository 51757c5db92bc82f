// Package repo discovers the git repository a path belongs to and derives
// the locations Locksmith cares about: the resolved .git directory, the LFS
// directory, the on-disk lock-cache file, and the checked-out branch.
package repo

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/finchley/locksmith/internal/errors"
)

const (
	gitEntryName     = ".git"
	headFileName     = "HEAD"
	configFileName   = "config"
	lfsDirName       = "lfs"
	lockCacheDBName  = "lockcache.db"
	detachedShaWidth = 12
)

// Context describes one discovered repository. It is computed once per
// discovery and cached by the caller until Exists() reports the root gone.
type Context struct {
	// Root is the working-tree root, the directory containing .git.
	Root string
	// GitDir is the resolved .git directory. For linked worktrees this is
	// the per-worktree directory the .git file points at.
	GitDir string
	// CommonDir is the shared git directory. Equals GitDir except for
	// linked worktrees, where config and lfs state live in the main repo.
	CommonDir string
	// Branch is the checked-out branch name, or a short commit SHA when
	// HEAD is detached.
	Branch string
	// User is the configured user.name, empty when not set.
	User string
}

// Discover walks up from startDir looking for a .git entry and resolves the
// repository context. It returns ErrNoRepository when no .git is found, and
// an error wrapping ErrRepoStateCorrupt when a repository is present but its
// HEAD or config file is missing.
func Discover(startDir string) (*Context, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return nil, errors.NewRepoError("resolving start directory", err).WithPath(startDir)
	}

	root, gitDir, err := findGitDir(abs)
	if err != nil {
		return nil, err
	}

	commonDir := resolveCommonDir(gitDir)

	// A repository without HEAD or config is inconsistent, not absent.
	branch, err := ReadBranch(gitDir)
	if err != nil {
		return nil, err
	}
	user, err := readUserName(commonDir)
	if err != nil {
		return nil, err
	}

	return &Context{
		Root:      root,
		GitDir:    gitDir,
		CommonDir: commonDir,
		Branch:    branch,
		User:      user,
	}, nil
}

// Exists reports whether the repository root is still present on disk.
func (c *Context) Exists() bool {
	info, err := os.Stat(c.Root)
	return err == nil && info.IsDir()
}

// LFSDir is where git-lfs keeps its local state for this repository.
func (c *Context) LFSDir() string {
	return filepath.Join(c.CommonDir, lfsDirName)
}

// LockCachePath is the on-disk lock cache git-lfs maintains. The command
// runner deletes this file when a command reports it corrupt.
func (c *Context) LockCachePath() string {
	return filepath.Join(c.LFSDir(), lockCacheDBName)
}

// ReloadBranch re-reads HEAD and updates the cached branch name.
// It returns the new branch.
func (c *Context) ReloadBranch() (string, error) {
	branch, err := ReadBranch(c.GitDir)
	if err != nil {
		return "", err
	}
	c.Branch = branch
	return branch, nil
}

// findGitDir walks up from dir until it finds a .git entry, following the
// "gitdir:" file indirection used by linked worktrees and submodules.
func findGitDir(dir string) (root, gitDir string, err error) {
	for {
		entry := filepath.Join(dir, gitEntryName)
		info, statErr := os.Stat(entry)
		if statErr == nil {
			if info.IsDir() {
				return dir, entry, nil
			}
			resolved, resolveErr := resolveGitFile(dir, entry)
			if resolveErr != nil {
				return "", "", resolveErr
			}
			return dir, resolved, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", errors.NewRepoError("no repository found", errors.ErrNoRepository).WithPath(dir)
		}
		dir = parent
	}
}

// resolveGitFile reads a .git file of the form "gitdir: <path>" and returns
// the directory it points to, resolved against the containing directory.
func resolveGitFile(dir, gitFile string) (string, error) {
	data, err := os.ReadFile(gitFile)
	if err != nil {
		return "", errors.NewRepoError("reading .git file", err).WithPath(gitFile)
	}

	line := strings.TrimSpace(string(data))
	target, ok := strings.CutPrefix(line, "gitdir:")
	if !ok {
		return "", errors.NewRepoError("malformed .git file", errors.ErrRepoStateCorrupt).WithPath(gitFile)
	}

	target = strings.TrimSpace(target)
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	return filepath.Clean(target), nil
}

// resolveCommonDir follows the worktree "commondir" pointer when present.
// For an ordinary repository the git dir is its own common dir.
func resolveCommonDir(gitDir string) string {
	data, err := os.ReadFile(filepath.Join(gitDir, "commondir"))
	if err != nil {
		return gitDir
	}
	target := strings.TrimSpace(string(data))
	if target == "" {
		return gitDir
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(gitDir, target)
	}
	return filepath.Clean(target)
}

// ReadBranch parses <gitDir>/HEAD. A symbolic ref yields the branch name; a
// detached HEAD yields a shortened commit SHA. A missing HEAD means the
// repository state is corrupt.
func ReadBranch(gitDir string) (string, error) {
	headPath := filepath.Join(gitDir, headFileName)
	data, err := os.ReadFile(headPath)
	if err != nil {
		return "", errors.NewRepoError("reading HEAD", errors.ErrRepoStateCorrupt).WithPath(headPath)
	}

	line := strings.TrimSpace(string(data))
	if ref, ok := strings.CutPrefix(line, "ref:"); ok {
		ref = strings.TrimSpace(ref)
		if name, ok := strings.CutPrefix(ref, "refs/heads/"); ok {
			return name, nil
		}
		// Symbolic ref outside refs/heads (rare); show it as-is.
		return ref, nil
	}

	if line == "" {
		return "", errors.NewRepoError("empty HEAD", errors.ErrRepoStateCorrupt).WithPath(headPath)
	}

	// Detached HEAD: show a short SHA.
	if len(line) > detachedShaWidth {
		return line[:detachedShaWidth], nil
	}
	return line, nil
}

// readUserName extracts user.name from <commonDir>/config. The file being
// absent is a hard error; the key being absent is not.
func readUserName(commonDir string) (string, error) {
	configPath := filepath.Join(commonDir, configFileName)
	f, err := os.Open(configPath)
	if err != nil {
		return "", errors.NewRepoError("reading config", errors.ErrRepoStateCorrupt).WithPath(configPath)
	}
	defer func() { _ = f.Close() }()

	inUserSection := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			inUserSection = strings.EqualFold(line, "[user]")
			continue
		}
		if !inUserSection {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		if strings.TrimSpace(key) == "name" {
			return strings.Trim(strings.TrimSpace(value), `"`), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", errors.NewRepoError("scanning config", err).WithPath(configPath)
	}
	return "", nil
}
