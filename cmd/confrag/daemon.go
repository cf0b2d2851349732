package confrag

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/confrag/confrag/pkg/daemon"
	"github.com/confrag/confrag/pkg/filesystem"
	"github.com/confrag/confrag/pkg/types"
)

type daemonManifest struct {
	ConfigFile string         `yaml:"config_file"`
	State      string         `yaml:"state"`
	Options    daemon.Options `yaml:"options"`
}

func newDaemonConfigCmd(opts *rootOptions) *cobra.Command {
	var manifestPath string
	var showDiff bool

	cmd := &cobra.Command{
		Use:   "daemon-config",
		Short: "Reconcile the Docker daemon configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			var manifest daemonManifest
			if err := readManifest(manifestPath, &manifest); err != nil {
				return err
			}

			configFile := manifest.ConfigFile
			if configFile == "" {
				configFile = opts.cfg.DaemonConfigFile
			}

			reconciler, err := daemon.NewReconciler(filesystem.NewOS(), configFile)
			if err != nil {
				return err
			}
			defer func() { _ = reconciler.Close() }()

			state := manifest.State
			if state == "" {
				state = types.StatePresent
			}

			if showDiff && state == types.StatePresent {
				preview, err := reconciler.Preview(manifest.Options)
				if err != nil {
					return err
				}
				if preview != "" {
					fmt.Fprintln(cmd.OutOrStdout(), preview)
				}
			}

			var summary types.Summary
			summary.Add(reconciler.Reconcile(manifest.Options, state))
			return printSummary(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "manifest file with the daemon options")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "print the pending configuration change as a diff")
	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}
