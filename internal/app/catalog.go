package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgstash/internal/output"
	"github.com/blackwell-systems/pkgstash/internal/store"
)

var (
	catalogFlagArch      string
	catalogFlagSummary   string
	catalogFlagInstalled bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local package catalog",
	Long: `The local backend keeps the packages each repository offers, and the
packages that are installed, in the state database. These commands seed and
inspect it. The pkcon backend asks the system package manager instead and
does not use the catalog.`,
	Example: `  pkgstash catalog add openrepos-alice harbour-app 1.2-1
  pkgstash catalog add openrepos-alice harbour-app 1.0-1 --installed
  pkgstash catalog list
  pkgstash catalog list --installed`,
}

var catalogAddCmd = &cobra.Command{
	Use:   "add <repo> <name> <version>",
	Short: "Add a package to a repository's catalog",
	Args:  cobra.ExactArgs(3),
	RunE:  runCatalogAdd,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog or installed packages",
	Args:  cobra.NoArgs,
	RunE:  runCatalogList,
}

func init() {
	catalogAddCmd.Flags().StringVar(&catalogFlagArch, "arch", "noarch", "Package architecture")
	catalogAddCmd.Flags().StringVar(&catalogFlagSummary, "summary", "", "One-line description")
	catalogAddCmd.Flags().BoolVar(&catalogFlagInstalled, "installed", false, "Record the package as installed from repo instead")
	catalogListCmd.Flags().BoolVar(&catalogFlagInstalled, "installed", false, "List installed packages")

	catalogCmd.AddCommand(catalogAddCmd, catalogListCmd)
	RootCmd.AddCommand(catalogCmd)
}

func runCatalogAdd(cmd *cobra.Command, args []string) error {
	repoAlias, name, version := args[0], args[1], args[2]

	d, err := openDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	if catalogFlagInstalled {
		err = d.store.InsertInstalled(&store.InstalledPackage{
			Name: name, Version: version, Arch: catalogFlagArch, Repo: repoAlias,
		})
	} else {
		err = d.store.InsertCatalogPackage(&store.CatalogPackage{
			Name: name, Version: version, Arch: catalogFlagArch, Repo: repoAlias, Summary: catalogFlagSummary,
		})
	}
	if err != nil {
		return err
	}

	where := "catalog of " + repoAlias
	if catalogFlagInstalled {
		where = "installed packages"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %s %s to %s\n", name, version, where)
	return nil
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	d, err := openDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	out := cmd.OutOrStdout()
	if catalogFlagInstalled {
		pkgs, err := d.store.ListInstalled()
		if err != nil {
			return err
		}
		fmt.Fprint(out, output.RenderInstalledTable(pkgs))
		return nil
	}

	pkgs, err := d.store.ListCatalog()
	if err != nil {
		return err
	}
	fmt.Fprint(out, output.RenderCatalogTable(pkgs))
	return nil
}
