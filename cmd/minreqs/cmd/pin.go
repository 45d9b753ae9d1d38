package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	minreqs "github.com/minreqs/go-minreqs"
	"github.com/minreqs/go-minreqs/pyproject"
)

var (
	// pinGroup names the optional-dependencies group that receives the pins
	pinGroup string
	// pinDryRun prints the patched manifest instead of writing it
	pinDryRun bool

	// pinCmd represents the pin command
	pinCmd = &cobra.Command{
		Use:   "pin [pyproject.toml]",
		Short: "Write resolved minimums into a pyproject.toml group",
		Long: `Resolve every entry of [project.dependencies] to its minimum version
and write the pinned specifiers into an [project.optional-dependencies]
group. The rest of the manifest is left byte-for-byte intact, and the
previous content is kept next to it as pyproject.toml.BAK.

Installing the group (pip install -e ".[` + pyproject.DefaultGroup + `]") then exercises the
declared lower bounds instead of the latest releases.

Examples:
  minreqs pin
  minreqs pin --group lowest ./service/pyproject.toml
  minreqs pin --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPin,
	}
)

func init() {
	pinCmd.Flags().StringVarP(&pinGroup, "group", "g", pyproject.DefaultGroup, "optional-dependencies group to write")
	pinCmd.Flags().BoolVar(&pinDryRun, "dry-run", false, "print the patched manifest instead of writing it")
}

func runPin(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	path := pyproject.DefaultPath("")
	if len(args) > 0 {
		path = args[0]
	}

	doc, err := pyproject.Load(path)
	if err != nil {
		return err
	}

	deps := doc.Dependencies()
	if len(deps) == 0 {
		return fmt.Errorf("%s declares no dependencies", path)
	}

	resolver, err := minreqs.NewResolver(cfg.Policy(), resolverOptions(cfg)...)
	if err != nil {
		return err
	}

	results, err := resolver.ResolveAll(cmd.Context(), deps)
	if err != nil {
		return err
	}

	resolved := make([]string, len(results))
	pinned := 0
	for i, res := range results {
		resolved[i] = res.Output
		if res.Changed {
			pinned++
		}
	}

	// Compare against what the group already holds, so reruns surface
	// floor movement.
	if previous := doc.OptionalDependencies(pinGroup); len(previous) > 0 {
		if diff := diffAgainstGroup(cmd.Context(), previous, results); diff != nil && !diff.IsEmpty() {
			printDiff(cmd.ErrOrStderr(), diff)
		}
	}

	if pinDryRun {
		_, err := cmd.OutOrStdout().Write(doc.Patch(pinGroup, resolved))
		return err
	}

	if err := pyproject.PatchFile(path, pinGroup, resolved); err != nil {
		return err
	}

	summary := fmt.Sprintf("wrote %d specifiers (%d pinned) to %s group %q", len(resolved), pinned, path, pinGroup)
	fmt.Fprintln(cmd.ErrOrStderr(), SuccessStyle.Render(summary))

	return nil
}

// diffAgainstGroup compares the group's current entries with the new
// resolutions. Returns nil when the current entries cannot be parsed.
func diffAgainstGroup(ctx context.Context, previous []string, results []minreqs.Resolution) *minreqs.ResolutionDiff {
	offline, err := minreqs.NewResolver(minreqs.Policy{Offline: true})
	if err != nil {
		return nil
	}
	old, err := offline.ResolveAll(ctx, previous)
	if err != nil {
		return nil
	}
	return minreqs.DiffResolutions(old, results)
}

// printDiff reports pin movement line by line.
func printDiff(w io.Writer, diff *minreqs.ResolutionDiff) {
	for _, shift := range diff.Raised {
		fmt.Fprintln(w, SuccessStyle.Render(fmt.Sprintf("  raised  %s %s -> %s", shift.Name, shift.OldVersion, shift.NewVersion)))
	}
	for _, shift := range diff.Lowered {
		fmt.Fprintln(w, WarningStyle.Render(fmt.Sprintf("  lowered %s %s -> %s", shift.Name, shift.OldVersion, shift.NewVersion)))
	}
	for _, change := range diff.Added {
		fmt.Fprintf(w, "  added   %s\n", change.Specifier)
	}
	for _, change := range diff.Removed {
		fmt.Fprintf(w, "  removed %s\n", change.Specifier)
	}
}
