package app

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgstash/internal/output"
)

var restoreFlagYes bool

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore state from a backup file",
	Long: `Restore repositories, bookmarks and packages from a backup file.

Restoring runs these steps:
  1. Bookmarks are added to the current set
  2. Repositories are registered and enabled or disabled as recorded
  3. Repositories are refreshed
  4. Every package in the backup is searched for
  5. The newest available version of each package is installed, unless an
     equal or newer version is already installed

Packages no managed repository offers are listed at the end.`,
	Example: `  pkgstash restore ~/backups/phone.ini         # Asks for confirmation
  pkgstash restore ~/backups/phone.ini --yes   # No confirmation`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().BoolVar(&restoreFlagYes, "yes", false, "Skip confirmation prompt")

	RootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	path := args[0]

	d, err := openDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	details, err := d.engine.Details(path)
	if err != nil {
		return fmt.Errorf("restore %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, output.RenderDetails(details))
	fmt.Fprintln(out)

	if !restoreFlagYes && !confirm(cmd.InOrStdin(), out, "Restore this backup?") {
		fmt.Fprintln(out, "Restore cancelled.")
		return nil
	}

	spinner := output.NewSpinner("Restoring")
	spinner.SetWriter(out)
	wait := d.follow(spinner)

	if err := d.engine.Restore(path); err != nil {
		return fmt.Errorf("restore %s: %w", path, err)
	}

	spinner.Start()
	result := wait()

	if result.restoreErr != nil {
		spinner.Stop()
		return fmt.Errorf("failed to read backup: %w", result.restoreErr)
	}
	spinner.StopWithMessage("✓ Restore complete")

	if missing := d.engine.NotFound(); len(missing) > 0 {
		fmt.Fprintln(out)
		fmt.Fprint(out, output.RenderNotFound(missing))
	}
	return nil
}

// confirm asks a yes/no question on out and reads the answer from in.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
