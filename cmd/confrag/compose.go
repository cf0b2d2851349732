package confrag

import (
	"github.com/spf13/cobra"

	"github.com/confrag/confrag/pkg/compose"
	"github.com/confrag/confrag/pkg/filesystem"
	"github.com/confrag/confrag/pkg/types"
)

type composeManifest struct {
	BaseDirectory string         `yaml:"base_directory"`
	Networks      []types.Entity `yaml:"networks"`
	Services      []types.Entity `yaml:"services"`
	Volumes       []types.Entity `yaml:"volumes"`
}

func newComposeCmd(opts *rootOptions) *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Reconcile compose fragment files",
		RunE: func(cmd *cobra.Command, args []string) error {
			var manifest composeManifest
			if err := readManifest(manifestPath, &manifest); err != nil {
				return err
			}

			baseDirectory := manifest.BaseDirectory
			if baseDirectory == "" {
				baseDirectory = opts.cfg.ComposeDirectory
			}

			reconciler, err := compose.NewReconciler(filesystem.NewOS(), baseDirectory)
			if err != nil {
				return err
			}
			defer func() { _ = reconciler.Close() }()

			result := reconciler.Reconcile(compose.Batch{
				Networks: manifest.Networks,
				Services: manifest.Services,
				Volumes:  manifest.Volumes,
			})

			var summary types.Summary
			summary.Merge(result.Networks)
			summary.Merge(result.Services)
			summary.Merge(result.Volumes)

			return printSummary(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "manifest file describing networks, services and volumes")
	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}
