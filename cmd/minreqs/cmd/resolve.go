package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	minreqs "github.com/minreqs/go-minreqs"
)

var (
	// resolveJSON emits one JSON object per resolution instead of plain text
	resolveJSON bool

	// resolveCmd represents the resolve command
	resolveCmd = &cobra.Command{
		Use:   "resolve [specifier...]",
		Short: "Rewrite specifiers to pin their minimum versions",
		Long: `Resolve each dependency specifier to the lowest version its
constraints allow and print the rewritten specifier.

Specifiers come from the command line, or from stdin when no arguments
are given: one specifier per line, requirements.txt style, with blank
lines and # comment lines skipped. Specifiers that cannot be pinned
under the active policy are printed unchanged.

Examples:
  minreqs resolve "numpy>=1.21" "requests[security]>=2.8"
  minreqs resolve --offline < requirements.txt
  minreqs resolve --json "flask>=2.0; python_version >= '3.8'"`,
		RunE: runResolve,
	}
)

func init() {
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "emit one JSON object per resolution")
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	specs := args
	if len(specs) == 0 {
		specs, err = readSpecifiers(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}
	if len(specs) == 0 {
		return nil
	}

	resolver, err := minreqs.NewResolver(cfg.Policy(), resolverOptions(cfg)...)
	if err != nil {
		return err
	}

	results, err := resolver.ResolveAll(cmd.Context(), specs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if resolveJSON {
		enc := json.NewEncoder(out)
		for _, res := range results {
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("failed to encode resolution: %w", err)
			}
		}
		return nil
	}

	pinned := 0
	for _, res := range results {
		fmt.Fprintln(out, res.Output)
		if res.Changed {
			pinned++
		}
	}

	summary := fmt.Sprintf("pinned %d of %d specifiers", pinned, len(results))
	style := SuccessStyle
	if pinned < len(results) {
		style = WarningStyle
	}
	fmt.Fprintln(cmd.ErrOrStderr(), style.Render(summary))

	return nil
}

// readSpecifiers reads one specifier per line, requirements.txt style:
// blank lines and # comment lines are skipped.
func readSpecifiers(r io.Reader) ([]string, error) {
	var specs []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		specs = append(specs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read specifiers: %w", err)
	}

	return specs, nil
}
