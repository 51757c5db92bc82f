package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finchley/locksmith/internal/locks"
)

var unlockForce bool

var unlockCmd = &cobra.Command{
	Use:   "unlock <path-or-id>...",
	Short: "Release locks on the LFS server",
	Long: `Release locks on the LFS server. Each argument is matched against the
current lock list, first as an exact repo-relative path and then as a
lock ID. Releasing another user's lock requires --force.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUnlock,
}

func init() {
	unlockCmd.Flags().BoolVarP(&unlockForce, "force", "f", false, "release locks held by other users")
	rootCmd.AddCommand(unlockCmd)
}

func runUnlock(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	// Arguments resolve against the live list, not the snapshot, so a
	// stale local ID cannot release the wrong lock.
	if err := s.refresh(); err != nil {
		return err
	}
	records := s.records()

	type target struct {
		arg string
		rec locks.Lock
		err error
	}
	targets := make([]target, 0, len(args))
	for _, arg := range args {
		rec, ok := findTarget(records, arg)
		if !ok {
			targets = append(targets, target{arg: arg, err: fmt.Errorf("no lock matches %q", arg)})
			continue
		}
		targets = append(targets, target{arg: arg, rec: rec})
	}

	for i := range targets {
		t := &targets[i]
		if t.err != nil {
			continue
		}
		s.run(func() {
			if err := s.coord.Unlock(t.rec.ID, unlockForce); err != nil {
				t.err = err
			}
		})
	}
	s.settle()

	failed := 0
	for _, t := range targets {
		if t.err != nil {
			fmt.Printf("error: %s: %v\n", t.arg, t.err)
			failed++
			continue
		}
		if msg, ok := s.outcomes.failureFor(t.rec.Path); ok {
			fmt.Printf("error: %s: %s\n", t.rec.Path, msg)
			failed++
			continue
		}
		fmt.Printf("unlocked %s\n", t.rec.Path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d locks could not be released", failed, len(args))
	}
	return nil
}
