// Package cli provides the Cobra command structure for sfcheck.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/yaklabco/sfcheck/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root sfcheck command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "sfcheck",
		Short: "Type-check sources embedded in single-file components and documents",
		Long: `sfcheck loads the script of foreign documents, such as Vue single-file
components and the fenced code blocks of Markdown files, into a compiler
host under virtual names (App.vue.ts, README.md.js).

Imports between components and plain sources resolve as if the embedded
scripts were ordinary files, and every issue is reported against the
document it came from.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			ctx := commandContext(cmd)
			logger := logging.FromContext(ctx)
			if debug {
				logging.ApplyLevel(logger, "debug")
			}
			cmd.SetContext(logging.WithLogger(ctx, logger))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	// Add subcommands.
	rootCmd.AddCommand(newCheckCommand(info))
	rootCmd.AddCommand(newVirtualCommand())
	rootCmd.AddCommand(newLsCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}
