package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/yaklabco/sfcheck/internal/configloader"
	"github.com/yaklabco/sfcheck/internal/logging"
	"github.com/yaklabco/sfcheck/pkg/config"
)

// initFlags holds the flags for the init command.
type initFlags struct {
	force    bool
	markdown bool
	output   string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new sfcheck configuration file",
		Long: `Create a new .sfcheck.yml configuration file in the current directory
with the default settings.

Examples:
  sfcheck init                       Create .sfcheck.yml
  sfcheck init --markdown            Also enable Markdown code blocks
  sfcheck init --output custom.yml   Write to a custom file path`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(commandContext(cmd), flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().BoolVar(&flags.markdown, "markdown", false, "Enable the Markdown adapter")
	cmd.Flags().StringVarP(&flags.output, "output", "o", configloader.ProjectConfigFile, "Output file path")

	return cmd
}

func runInit(ctx context.Context, flags *initFlags) error {
	logger := logging.NewInteractive()

	absPath, err := filepath.Abs(flags.output)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	fsys := afero.NewOsFs()
	if exists, _ := afero.Exists(fsys, absPath); exists {
		if !flags.force {
			return fmt.Errorf("file %q already exists; use --force to overwrite", flags.output)
		}
		logger.Warn("overwriting existing file", logging.FieldPath, flags.output)
	}

	cfg := config.NewConfig()
	cfg.Extensions.Markdown = config.Bool(flags.markdown)

	if err := configloader.WriteProjectConfig(ctx, fsys, cfg, absPath); err != nil {
		return err
	}

	logger.Info("created configuration file", logging.FieldPath, flags.output)
	logger.Info("run 'sfcheck ls' to see the files that will be checked")

	return nil
}
