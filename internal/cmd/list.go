package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finchley/locksmith/internal/locks"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the locks held on the LFS server",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "emit the lock list as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.refresh(); err != nil {
		return err
	}
	records := s.records()

	if listJSON {
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding lock list: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(records) == 0 {
		fmt.Println("No locks.")
		return nil
	}
	printLockTable(records, s.cfg.TUI.ShowGUIDs)
	return nil
}

// printLockTable writes a plain fixed-width table, one lock per line.
func printLockTable(records []locks.Lock, showGUIDs bool) {
	pathW := len("PATH")
	userW := len("USER")
	for _, rec := range records {
		if len(rec.Path) > pathW {
			pathW = len(rec.Path)
		}
		if len(rec.User) > userW {
			userW = len(rec.User)
		}
	}

	header := fmt.Sprintf("%-*s  %-*s  %s", pathW, "PATH", userW, "USER", "ID")
	if showGUIDs {
		header += "          GUID"
	}
	fmt.Println(header)
	fmt.Println(strings.Repeat("-", len(header)))

	for _, rec := range records {
		id := rec.ID
		if id == "" {
			id = "-"
		}
		line := fmt.Sprintf("%-*s  %-*s  %-10s", pathW, rec.Path, userW, rec.User, id)
		if showGUIDs {
			guid := rec.AssetGUID
			if guid == "" {
				guid = "-"
			}
			line += "  " + guid
		}
		fmt.Println(strings.TrimRight(line, " "))
	}
}
