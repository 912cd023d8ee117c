package terminal

import (
	"io"
	"os"

	"github.com/el-tools/elstats/pkg/runtime/terminal/commands"
	"github.com/el-tools/elstats/pkg/services/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	rootCmd *cobra.Command

	cfgPath string
	verbose bool
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{}
	cli.rootCmd = cli.newRootCmd(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd(output io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "elstats",
		Short: "Enterprise Linux usage statistics",
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := zerolog.InfoLevel
			if cli.verbose {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
			cmd.SetContext(logger.WithContext(cmd.Context()))
		},
	}

	cmd.PersistentFlags().StringVarP(&cli.cfgPath, "config", "c", "",
		"Path to a YAML configuration file (defaults are compiled in)")
	cmd.PersistentFlags().BoolVarP(&cli.verbose, "verbose", "v", false,
		"Log download progress and cache decisions")

	deps := commands.Deps{
		Config: func() (*config.Config, error) {
			return config.Load(cli.cfgPath)
		},
	}

	cmd.AddCommand(commands.NewFetchCmd(deps))
	cmd.AddCommand(commands.NewReportCmd(deps, output))

	return cmd
}
