package cli

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/yaklabco/sfcheck/internal/logging"
	"github.com/yaklabco/sfcheck/pkg/config"
)

func newVirtualCommand() *cobra.Command {
	cfg := &config.Config{}
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "virtual <file>",
		Short: "Print the source the compiler sees for a document",
		Long: `Print the embedded source of a foreign document as it is handed to the
compiler, including any synthesized template code. The virtual file name
is logged to stderr.

Examples:
  sfcheck virtual src/App.vue
  sfcheck virtual --markdown README.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVirtual(cmd, args[0], cfg, flags)
		},
	}

	addAdapterFlags(cmd, cfg, flags)

	return cmd
}

func runVirtual(cmd *cobra.Command, file string, cliCfg *config.Config, flags *checkFlags) error {
	applyCheckFlags(cmd, cliCfg, flags)

	cfg, workDir, err := loadConfig(cmd, cliCfg)
	if err != nil {
		return err
	}

	sess := newSession(cfg, afero.NewOsFs(), workDir, logging.FromContext(commandContext(cmd)))
	defer sess.Close()

	hostName := sess.absPath(file)
	if !sess.base.FileExists(hostName) {
		return fmt.Errorf("file %q not found", file)
	}

	name, err := sess.virtualName(hostName)
	if err != nil {
		return err
	}
	if name == hostName {
		return fmt.Errorf("%q has no embedded source", file)
	}

	src, err := sess.host().GetSourceFile(name)
	if err != nil {
		return err
	}

	logger := logging.NewInteractive()
	logger.Info("virtual source",
		logging.FieldVirtualFile, name,
		logging.FieldRealEnd, src.RealEnd())

	_, err = fmt.Fprint(cmd.OutOrStdout(), src.Text)
	return err
}
