package cli

import (
	"bufio"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/yaklabco/sfcheck/internal/logging"
	"github.com/yaklabco/sfcheck/pkg/config"
	"github.com/yaklabco/sfcheck/pkg/embedded"
)

func newLsCommand() *cobra.Command {
	cfg := &config.Config{}
	flags := &checkFlags{}
	var hostNames bool

	cmd := &cobra.Command{
		Use:   "ls [dir]",
		Short: "List the root files as the compiler sees them",
		Long: `List the files check would load from a directory. Documents with an
embedded source are shown under their virtual name.

Examples:
  sfcheck ls
  sfcheck ls --markdown docs/
  sfcheck ls --host     # Show document names instead`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runLs(cmd, dir, hostNames, cfg, flags)
		},
	}

	addAdapterFlags(cmd, cfg, flags)
	cmd.Flags().BoolVar(&hostNames, "host", false, "print host document names")

	return cmd
}

func runLs(cmd *cobra.Command, dir string, hostNames bool, cliCfg *config.Config, flags *checkFlags) error {
	applyCheckFlags(cmd, cliCfg, flags)

	cfg, workDir, err := loadConfig(cmd, cliCfg)
	if err != nil {
		return err
	}

	sess := newSession(cfg, afero.NewOsFs(), workDir, logging.FromContext(commandContext(cmd)))
	defer sess.Close()

	names, err := sess.listRoots(dir)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(cmd.OutOrStdout())
	for _, name := range names {
		if hostNames {
			if parts := embedded.Split(name); sess.extensionFor(parts.HostFileName) != nil {
				name = parts.HostFileName
			}
		}
		fmt.Fprintln(bw, relativeTo(workDir, name))
	}
	return bw.Flush()
}
