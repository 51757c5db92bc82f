package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/finchley/locksmith/internal/locks"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show repository, tool and cache state without hitting the network",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	fmt.Println("Repository:")
	fmt.Printf("  root:    %s\n", s.repoCtx.Root)
	fmt.Printf("  branch:  %s\n", s.repoCtx.Branch)
	user := s.repoCtx.User
	if user == "" {
		user = "(not configured)"
	}
	fmt.Printf("  user:    %s\n", user)
	fmt.Println()

	fmt.Println("LFS tool:")
	fmt.Printf("  path:      %s\n", s.cfg.LFS.ToolPath)
	if s.client.Available() {
		fmt.Println("  available: yes")
	} else {
		fmt.Println("  available: no (not found on PATH)")
	}
	fmt.Println()

	fmt.Println("Lock cache:")
	snapPath := locks.SnapshotPath(s.repoCtx.LFSDir())
	if info, err := os.Stat(snapPath); err == nil {
		fmt.Printf("  snapshot: %s (%d bytes)\n", snapPath, info.Size())
	} else {
		fmt.Printf("  snapshot: none (%s)\n", snapPath)
	}
	s.restore()
	records := s.records()
	fmt.Printf("  locks:    %d\n", len(records))
	if s.coord.AutoRefresh() {
		fmt.Println("  refresh:  auto")
	} else {
		fmt.Println("  refresh:  manual")
	}
	dir := "ascending"
	if !s.coord.SortAscending() {
		dir = "descending"
	}
	fmt.Printf("  sort:     %s, %s\n", s.coord.SortKey(), dir)
	fmt.Println()

	fmt.Println("Config:")
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Printf("  file: %s\n", used)
	} else {
		fmt.Println("  file: none (defaults)")
	}
	return nil
}
