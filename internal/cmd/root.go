package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/finchley/locksmith/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "locksmith",
	Short: "Git LFS lock manager",
	Long: `Locksmith keeps a local cache of git-lfs file locks and manages it
from a terminal UI or one-shot commands. It refreshes the lock list in the
background, applies lock and unlock operations optimistically, and heals
the git-lfs lock cache when the tool trips over it.

Run without arguments to open the interactive lock table.`,
	// main prints the error; without these cobra would print it again
	// along with the usage text.
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/locksmith/config.yaml)")
	rootCmd.PersistentFlags().StringP("repo", "C", ".", "run as if started in this directory")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("LOCKSMITH")
	// Nested keys map to env vars with underscores, e.g.
	// LOCKSMITH_LFS_TIMEOUT_MS for lfs.timeout_ms.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// startDir returns the directory repository discovery begins in.
func startDir(cmd *cobra.Command) string {
	dir, err := cmd.Flags().GetString("repo")
	if err != nil || dir == "" {
		return "."
	}
	return dir
}
