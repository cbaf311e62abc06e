package app

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgstash/internal/output"
)

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "Manage bookmarked items",
	Example: `  pkgstash bookmarks list
  pkgstash bookmarks add 42 7
  pkgstash bookmarks remove 7`,
}

var bookmarksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookmarks in the order they were added",
	Args:  cobra.NoArgs,
	RunE:  runBookmarksList,
}

var bookmarksAddCmd = &cobra.Command{
	Use:   "add <id>...",
	Short: "Bookmark items",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBookmarksAdd,
}

var bookmarksRemoveCmd = &cobra.Command{
	Use:   "remove <id>...",
	Short: "Remove bookmarks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBookmarksRemove,
}

func init() {
	bookmarksCmd.AddCommand(bookmarksListCmd, bookmarksAddCmd, bookmarksRemoveCmd)
	RootCmd.AddCommand(bookmarksCmd)
}

// parseIDs parses bookmark ids, rejecting the whole list on the first bad one.
func parseIDs(args []string) ([]uint32, error) {
	ids := make([]uint32, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseUint(a, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid bookmark id %q: must be a number between 0 and 4294967295", a)
		}
		ids = append(ids, uint32(id))
	}
	return ids, nil
}

func runBookmarksList(cmd *cobra.Command, args []string) error {
	d, err := openDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	ids, err := d.bookmarks.List()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), output.RenderBookmarks(ids))
	return nil
}

func runBookmarksAdd(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	d, err := openDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	for _, id := range ids {
		if err := d.bookmarks.Add(id); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Bookmarked %d item(s)\n", len(ids))
	return nil
}

func runBookmarksRemove(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	d, err := openDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	var removed int
	for _, id := range ids {
		ok, err := d.bookmarks.Contains(id)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "Not bookmarked: %d\n", id)
			continue
		}
		if err := d.bookmarks.Remove(id); err != nil {
			return err
		}
		removed++
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d bookmark(s)\n", removed)
	return nil
}
