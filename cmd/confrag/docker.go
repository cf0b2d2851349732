package confrag

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/confrag/confrag/pkg/dockerapi"
	"github.com/confrag/confrag/pkg/types"
)

func newDockerCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docker",
		Short: "Talk to the Docker engine",
	}

	cmd.AddCommand(newDockerVersionCmd(opts))
	cmd.AddCommand(newDockerPluginCmd(opts))
	return cmd
}

func newDockerVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Query the engine's version",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dockerapi.NewClient(opts.cfg.DockerSocket)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			info, err := client.Version(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "docker_version: %s\napi_version: %s\n", info.DockerVersion, info.APIVersion)
			return nil
		},
	}
}

type pluginManifest struct {
	Plugins []dockerapi.PluginSpec `yaml:"plugins"`
}

func newDockerPluginCmd(opts *rootOptions) *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "plugin",
		Short: "Reconcile managed engine plugins",
		RunE: func(cmd *cobra.Command, args []string) error {
			var manifest pluginManifest
			if err := readManifest(manifestPath, &manifest); err != nil {
				return err
			}

			client, err := dockerapi.NewClient(opts.cfg.DockerSocket)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			var summary types.Summary
			for _, spec := range manifest.Plugins {
				summary.Add(client.ReconcilePlugin(cmd.Context(), spec))
			}
			return printSummary(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "manifest file listing the plugins")
	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}
