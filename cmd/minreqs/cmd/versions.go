package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	minreqs "github.com/minreqs/go-minreqs"
)

var (
	// versionsStable excludes pre-releases from the listing
	versionsStable bool

	// versionsCmd represents the versions command
	versionsCmd = &cobra.Command{
		Use:   "versions <name>",
		Short: "List the published versions of a distribution",
		Long: `List every version of a distribution known to the catalog, oldest
first. The catalog backend follows the active policy: the pip subprocess
when available, otherwise the package index JSON API.

Examples:
  minreqs versions requests
  minreqs versions --stable numpy
  minreqs versions --index-url https://pypi.example.com flask`,
		Args: cobra.ExactArgs(1),
		RunE: runVersions,
	}
)

func init() {
	versionsCmd.Flags().BoolVar(&versionsStable, "stable", false, "exclude pre-releases")
}

func runVersions(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	catalog, err := minreqs.NewCatalog(cfg.Policy(), resolverOptions(cfg)...)
	if err != nil {
		return fmt.Errorf("cannot list versions: %w", err)
	}

	name := minreqs.CanonicalName(args[0])
	versions, err := catalog.Versions(cmd.Context(), name)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	listed := 0
	for _, v := range versions {
		if versionsStable && v.IsPrerelease() {
			continue
		}
		fmt.Fprintln(out, v.Original)
		listed++
	}
	if listed == 0 {
		return fmt.Errorf("no published versions for %s", name)
	}

	return nil
}
