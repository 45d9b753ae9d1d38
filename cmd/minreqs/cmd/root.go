// Package cmd contains all CLI commands for minreqs.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	minreqs "github.com/minreqs/go-minreqs"
	"github.com/minreqs/go-minreqs/internal/config"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug logging
	verbose bool
	// offline disables every catalog backend
	offline bool
	// tryPip prefers the pip subprocess backend when pip is on PATH
	tryPip bool
	// pinUnconstrained pins bare names to their lowest stable release
	pinUnconstrained bool
	// indexURL overrides the package index queried by the registry backend
	indexURL string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "minreqs",
		Short: "Pin Python dependency specifiers to their minimum versions",
		Long: TitleStyle.Render("minreqs") + SubtitleStyle.Render(" - pin Python dependencies to their minimum versions") + `

minreqs rewrites PEP 508 dependency specifiers so that each one pins the
lowest version its constraints allow. Testing against those pins catches
declared lower bounds that no longer install or no longer pass.

Lower bounds written into the specifier are answered without network
access. Anything else is answered from a version catalog: the pip
subprocess when available, otherwise the package index JSON API.

` + SubtitleStyle.Render("Examples:") + `
  minreqs resolve "numpy>=1.21"         Pin a single specifier
  minreqs resolve < requirements.txt    Pin a requirements file
  minreqs versions requests             List published versions
  minreqs pin                           Write pins into pyproject.toml`,
	}
)

func init() {
	// Global flags. Each overrides the matching MIN_REQS_* variable
	// when set explicitly.
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "never query a catalog backend")
	rootCmd.PersistentFlags().BoolVar(&tryPip, "pip", true, "prefer the pip subprocess backend when pip is on PATH")
	rootCmd.PersistentFlags().BoolVar(&pinUnconstrained, "pin-unconstrained", true, "pin bare names to their lowest stable release")
	rootCmd.PersistentFlags().StringVar(&indexURL, "index-url", "", "package index base URL for the registry backend")

	// Add subcommands
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(pinCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// loadSettings merges environment configuration with explicitly set
// flags. Flags win over MIN_REQS_* variables, which win over defaults.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("offline") {
		cfg.Offline = offline
	}
	if flags.Changed("pip") {
		cfg.TryPip = tryPip
	}
	if flags.Changed("pin-unconstrained") {
		cfg.PinUnconstrained = pinUnconstrained
	}
	if flags.Changed("index-url") {
		cfg.IndexURL = indexURL
	}

	return cfg, nil
}

// newLogger builds the logger handed to the resolver. Styled output goes
// to stderr so stdout stays parseable.
func newLogger() *slog.Logger {
	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Prefix: "minreqs",
	})
	if verbose {
		logger.SetLevel(charmlog.DebugLevel)
	}
	return slog.New(logger)
}

// resolverOptions translates settings into resolver options.
func resolverOptions(cfg *config.Config) []minreqs.Option {
	opts := []minreqs.Option{minreqs.WithLogger(newLogger())}
	if cfg.IndexURL != "" {
		opts = append(opts, minreqs.WithIndexURL(cfg.IndexURL))
	}
	return opts
}
