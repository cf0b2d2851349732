package confrag

import (
	"github.com/spf13/cobra"

	"github.com/confrag/confrag/pkg/environments"
	"github.com/confrag/confrag/pkg/filesystem"
)

type environmentsManifest struct {
	BaseDirectory string                   `yaml:"base_directory"`
	Containers    []environments.Container `yaml:"containers"`
}

func newEnvironmentsCmd(opts *rootOptions) *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "environments",
		Short: "Reconcile per-container environment, property and config files",
		RunE: func(cmd *cobra.Command, args []string) error {
			var manifest environmentsManifest
			if err := readManifest(manifestPath, &manifest); err != nil {
				return err
			}

			baseDirectory := manifest.BaseDirectory
			if baseDirectory == "" {
				baseDirectory = opts.cfg.ContainerDirectory
			}

			reconciler, err := environments.NewReconciler(filesystem.NewOS(), baseDirectory)
			if err != nil {
				return err
			}
			defer func() { _ = reconciler.Close() }()

			result := reconciler.Reconcile(manifest.Containers)
			return printSummary(cmd.OutOrStdout(), result.Summary)
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "manifest file describing the containers")
	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}
