package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgstash/internal/backup"
	"github.com/blackwell-systems/pkgstash/internal/output"
	"github.com/blackwell-systems/pkgstash/internal/watcher"
)

var (
	backupFlagRepos     bool
	backupFlagInstalled bool
	backupFlagBookmarks bool
)

var backupCmd = &cobra.Command{
	Use:   "backup [file]",
	Short: "Write current state to a backup file",
	Long: `Write repositories, installed packages and bookmarks to a new backup file.

Without selection flags everything is backed up. The file must not exist yet;
missing parent directories are created. Without a file argument the backup
goes to a timestamped file in the configured backup directory.

Only managed repositories are saved. They are stored by author and recreated
from the configured URL template on restore.`,
	Example: `  pkgstash backup ~/backups/phone.ini                # Everything
  pkgstash backup ~/backups/repos.ini --repos         # Repositories only
  pkgstash backup --installed --bookmarks             # Into the backup directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().BoolVar(&backupFlagRepos, "repos", false, "Back up repositories")
	backupCmd.Flags().BoolVar(&backupFlagInstalled, "installed", false, "Back up installed packages")
	backupCmd.Flags().BoolVar(&backupFlagBookmarks, "bookmarks", false, "Back up bookmarks")

	RootCmd.AddCommand(backupCmd)
}

// selectedItems turns the selection flags into backup items. No flags means
// everything.
func selectedItems() backup.Items {
	var items backup.Items
	if backupFlagRepos {
		items |= backup.Repositories
	}
	if backupFlagInstalled {
		items |= backup.InstalledPackages
	}
	if backupFlagBookmarks {
		items |= backup.Bookmarks
	}
	if items == 0 {
		items = backup.AllItems
	}
	return items
}

func runBackup(cmd *cobra.Command, args []string) error {
	d, err := openDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	path := watcher.BackupPath(d.cfg.BackupDir, time.Now())
	if len(args) == 1 {
		path = args[0]
	}
	items := selectedItems()

	out := cmd.OutOrStdout()
	spinner := output.NewSpinner("Backing up")
	spinner.SetWriter(out)
	wait := d.follow(spinner)

	if err := d.engine.Backup(path, items); err != nil {
		return fmt.Errorf("backup %s: %w", path, err)
	}

	spinner.Start()
	result := wait()
	if result.final.Kind == backup.BackupFailed {
		spinner.Stop()
		return fmt.Errorf("backup failed (%s): %w", result.final.Code, result.final.Err)
	}
	spinner.StopWithMessage(fmt.Sprintf("✓ Backed up %s to %s", items, path))

	details, err := d.engine.Details(path)
	if err != nil {
		return fmt.Errorf("failed to read back %s: %w", path, err)
	}
	fmt.Fprintf(out, "  %d repositories, %d packages, %d bookmarks\n",
		details.Repos, details.Packages, details.Bookmarks)
	return nil
}
