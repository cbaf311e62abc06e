package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgstash/internal/output"
)

var reposFlagURL string

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "Manage registered repositories",
	Long: `List, add, enable, disable and remove repositories in the registry.

Managed repositories are named after their author: the alias is the
configured prefix plus the author and the URL comes from the configured
template. Commands taking an alias also accept a bare author.`,
	Example: `  pkgstash repos list
  pkgstash repos add alice                        # Managed repository of alice
  pkgstash repos add jolla --url https://...      # Any other repository
  pkgstash repos disable alice`,
}

var reposListCmd = &cobra.Command{
	Use:   "list",
	Short: "List repositories",
	Args:  cobra.NoArgs,
	RunE:  runReposList,
}

var reposAddCmd = &cobra.Command{
	Use:   "add <author | alias>",
	Short: "Register a repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runReposAdd,
}

var reposEnableCmd = &cobra.Command{
	Use:   "enable <alias>",
	Short: "Enable a repository",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return runReposSetEnabled(cmd, args[0], true) },
}

var reposDisableCmd = &cobra.Command{
	Use:   "disable <alias>",
	Short: "Disable a repository",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return runReposSetEnabled(cmd, args[0], false) },
}

var reposRemoveCmd = &cobra.Command{
	Use:   "remove <alias>",
	Short: "Unregister a repository and drop its catalog entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runReposRemove,
}

func init() {
	reposAddCmd.Flags().StringVar(&reposFlagURL, "url", "", "URL of an unmanaged repository; the argument is used as alias")

	reposCmd.AddCommand(reposListCmd, reposAddCmd, reposEnableCmd, reposDisableCmd, reposRemoveCmd)
	RootCmd.AddCommand(reposCmd)
}

func runReposList(cmd *cobra.Command, args []string) error {
	d, err := openDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	repos, err := d.store.ListRepositories()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), output.RenderRepoTable(repos, d.registry.Naming()))
	return nil
}

func runReposAdd(cmd *cobra.Command, args []string) error {
	d, err := openDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	alias := args[0]
	if reposFlagURL != "" {
		err = d.registry.AddRepo(alias, reposFlagURL)
	} else {
		alias, err = d.registry.AddAuthor(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to add repository: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Registered %s\n", alias)
	return nil
}

func runReposSetEnabled(cmd *cobra.Command, name string, enabled bool) error {
	d, err := openDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	alias := resolveAlias(d, name)
	if err := d.registry.SetEnabled(alias, enabled); err != nil {
		return err
	}

	state := "Disabled"
	if enabled {
		state = "Enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s %s\n", state, alias)
	return nil
}

func runReposRemove(cmd *cobra.Command, args []string) error {
	d, err := openDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	alias := resolveAlias(d, args[0])
	if err := d.registry.RemoveRepo(alias); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s\n", alias)
	return nil
}

// resolveAlias maps a bare author to its managed alias when no repository is
// registered under name itself.
func resolveAlias(d *deps, name string) string {
	if _, err := d.store.GetRepository(name); err == nil {
		return name
	}
	managed := d.registry.Naming().Alias(name)
	if _, err := d.store.GetRepository(managed); err == nil {
		return managed
	}
	return name
}
