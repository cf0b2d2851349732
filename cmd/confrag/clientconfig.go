package confrag

import (
	"github.com/spf13/cobra"

	"github.com/confrag/confrag/pkg/clientconfig"
	"github.com/confrag/confrag/pkg/filesystem"
)

type clientConfigManifest struct {
	Configs []clientconfig.Config `yaml:"configs"`
}

func newClientConfigCmd(opts *rootOptions) *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "client-config",
		Short: "Reconcile Docker client configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			var manifest clientConfigManifest
			if err := readManifest(manifestPath, &manifest); err != nil {
				return err
			}

			reconciler, err := clientconfig.NewReconciler(filesystem.NewOS(), opts.cfg.CacheDirectory)
			if err != nil {
				return err
			}
			defer func() { _ = reconciler.Close() }()

			summary := reconciler.Reconcile(manifest.Configs)
			return printSummary(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "manifest file listing the client configurations")
	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}
