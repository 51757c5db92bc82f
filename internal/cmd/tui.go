package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finchley/locksmith/internal/config"
	"github.com/finchley/locksmith/internal/repo"
	"github.com/finchley/locksmith/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive lock table",
	Long: `Open the interactive lock table. This is also what running locksmith
with no arguments does.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	repoCtx, err := repo.Discover(startDir(cmd))
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	app := tui.New(tui.Options{
		Config: cfg,
		Repo:   repoCtx,
		Logger: log.WithRepo(repoCtx.Root),
	})
	return app.Run()
}
