package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	dbPath      string
	configPath  string
	backendName string
	verbose     bool

	// RootCmd is the root command for pkgstash
	RootCmd = &cobra.Command{
		Use:   "pkgstash",
		Short: "Back up and restore repositories, packages and bookmarks",
		Long: `pkgstash saves the user-configurable state of the package manager to a
plain, editable backup file and brings it back later, on the same device or a
new one.

A backup holds:
  • Managed repositories (by author) and whether each one is enabled
  • The names of installed packages
  • Bookmarked items

Restoring re-registers the repositories and bookmarks, refreshes the
repositories, searches them for every package in the backup and installs the
newest version of whatever is missing or outdated.

Examples:
  # Back up everything
  pkgstash backup ~/backups/phone.ini

  # See what a backup contains
  pkgstash details ~/backups/phone.ini

  # Restore it
  pkgstash restore ~/backups/phone.ini

  # Back up automatically whenever state changes
  pkgstash watch --daemon`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "pkgstash: backup and restore of package manager state")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Run 'pkgstash backup <file>' to create a backup.")
			fmt.Fprintln(out, "Run 'pkgstash --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: ~/.pkgstash/pkgstash.db)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/pkgstash/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "package backend: local or pkcon (default from config)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}
