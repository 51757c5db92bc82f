package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lockCmd = &cobra.Command{
	Use:   "lock <path>...",
	Short: "Lock one or more files on the LFS server",
	Long: `Lock one or more files on the LFS server. Paths are repo-relative.
Each path is dispatched independently; a conflict on one does not stop
the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLock,
}

func init() {
	rootCmd.AddCommand(lockCmd)
}

func runLock(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	// The coordinator rejects duplicate paths synchronously, so dispatch
	// errors are collected per path before waiting for the server.
	dispatchErrs := make(map[string]error, len(args))
	for _, path := range args {
		path := path
		s.run(func() {
			if err := s.coord.Lock(path); err != nil {
				dispatchErrs[path] = err
			}
		})
	}
	s.settle()

	failed := 0
	for _, path := range args {
		if err := dispatchErrs[path]; err != nil {
			fmt.Printf("error: %s: %v\n", path, err)
			failed++
			continue
		}
		if msg, ok := s.outcomes.failureFor(path); ok {
			fmt.Printf("error: %s: %s\n", path, msg)
			failed++
			continue
		}
		fmt.Printf("locked %s\n", path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d paths could not be locked", failed, len(args))
	}
	return nil
}
