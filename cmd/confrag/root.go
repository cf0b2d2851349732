// Package confrag wires the CLI: every subcommand reads a declarative
// YAML manifest and drives the matching reconciler.
package confrag

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/confrag/confrag/internal/version"
	"github.com/confrag/confrag/pkg/config"
	"github.com/confrag/confrag/pkg/logging"
)

type rootOptions struct {
	verbosity  int
	configFile string
	cfg        *config.Config
}

// NewRootCmd builds the root command and its subcommand tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "confrag",
		Short: "Reconcile declarative container configuration files",
		Long: `confrag reconciles declarative container configuration against on-disk
artifacts: compose fragments, per-container environment and property
files, and the Docker client and daemon configuration. Files are only
rewritten when their content digest changes, and replacement is atomic.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(opts.verbosity)

			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return err
			}
			if opts.verbosity == 0 {
				opts.verbosity = cfg.Verbosity
				logging.SetupLogger(opts.verbosity)
			}
			opts.cfg = cfg

			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/confrag/confrag.toml)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newComposeCmd(opts))
	rootCmd.AddCommand(newEnvironmentsCmd(opts))
	rootCmd.AddCommand(newClientConfigCmd(opts))
	rootCmd.AddCommand(newDaemonConfigCmd(opts))
	rootCmd.AddCommand(newDockerCmd(opts))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("confrag %s (commit %s, built %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
