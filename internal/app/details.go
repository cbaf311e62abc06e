package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgstash/internal/backup"
	"github.com/blackwell-systems/pkgstash/internal/output"
	"github.com/blackwell-systems/pkgstash/internal/snapshot"
)

var detailsCmd = &cobra.Command{
	Use:   "details <file>",
	Short: "Show what a backup file contains",
	Long: `Show when a backup was created and how many repositories, packages and
bookmarks it holds. Nothing is changed.`,
	Example: `  pkgstash details ~/backups/phone.ini`,
	Args:    cobra.ExactArgs(1),
	RunE:    runDetails,
}

var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List backup files",
	Long: `List the backup files (*.ini) in a directory, newest first. Without a
directory the configured backup directory is listed.`,
	Example: `  pkgstash list
  pkgstash list ~/backups`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	RootCmd.AddCommand(detailsCmd)
	RootCmd.AddCommand(listCmd)
}

func runDetails(cmd *cobra.Command, args []string) error {
	// Details needs no database; an engine without collaborators only reads
	// the file.
	engine := backup.New(nil, nil, nil, nil)

	d, err := engine.Details(args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), output.RenderDetails(d))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	var dir string
	if len(args) == 1 {
		dir = args[0]
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir = cfg.BackupDir
	}

	entries, err := scanBackups(dir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Backups in %s:\n\n", dir)
	fmt.Fprint(out, output.RenderBackupTable(entries))
	return nil
}

// scanBackups inspects every backup file in dir. A missing directory has
// no backups.
func scanBackups(dir string) ([]output.BackupEntry, error) {
	files, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var entries []output.BackupEntry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".ini") {
			continue
		}
		path := filepath.Join(dir, f.Name())

		entry := output.BackupEntry{Path: path}
		if info, err := f.Info(); err == nil {
			entry.Size = info.Size()
			entry.ModTime = info.ModTime()
		}
		entry.Details, entry.Err = snapshot.Inspect(path)
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}
