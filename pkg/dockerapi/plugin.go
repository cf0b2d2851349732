package dockerapi

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	dockertypes "github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/filters"

	"github.com/confrag/confrag/pkg/types"
)

// enableTimeout is passed to the engine when enabling a plugin
const enableTimeout = 10 * time.Second

// PluginSpec declares the desired state of one managed plugin. The
// plugin is installed from Source and registered locally under
// Alias:Version.
type PluginSpec struct {
	Alias   string `yaml:"alias" json:"alias"`
	Source  string `yaml:"source" json:"source"`
	Version string `yaml:"version" json:"version"`
	State   string `yaml:"state,omitempty" json:"state,omitempty"`
}

// LocalRef is the alias:version name the plugin is known by locally
func (s PluginSpec) LocalRef() string {
	return s.Alias + ":" + s.Version
}

// RemoteRef is the source:version reference the plugin is pulled from
func (s PluginSpec) RemoteRef() string {
	return s.Source + ":" + s.Version
}

// ReconcilePlugin brings one managed plugin in line with its spec
func (c *Client) ReconcilePlugin(ctx context.Context, spec PluginSpec) types.ChangeRecord {
	if spec.Alias == "" || spec.Version == "" {
		return types.ChangeRecord{Name: spec.Alias, Failed: true, Message: "a plugin needs an alias and a version"}
	}

	if _, err := c.api.Ping(ctx); err != nil {
		return types.ChangeRecord{Name: spec.Alias, Failed: true, Message: "no running docker found"}
	}

	installed, err := c.findPlugin(ctx, spec.Alias)
	if err != nil {
		return types.ChangeRecord{Name: spec.Alias, Failed: true, Message: err.Error()}
	}

	if spec.State == types.StateAbsent {
		return c.removePlugin(ctx, spec, installed)
	}
	return c.installPlugin(ctx, spec, installed)
}

func (c *Client) installPlugin(ctx context.Context, spec PluginSpec, installed *dockertypes.Plugin) types.ChangeRecord {
	if installed != nil && installed.Name == spec.LocalRef() {
		if installed.Enabled {
			return types.ChangeRecord{
				Name:    spec.Alias,
				Message: fmt.Sprintf("plugin %s is already installed in version '%s'", spec.Alias, spec.Version),
			}
		}

		if err := c.api.PluginEnable(ctx, spec.LocalRef(), dockertypes.PluginEnableOptions{Timeout: int(enableTimeout.Seconds())}); err != nil {
			return types.ChangeRecord{Name: spec.Alias, Failed: true, Message: err.Error()}
		}
		return types.ChangeRecord{
			Name:    spec.Alias,
			Changed: true,
			Message: fmt.Sprintf("plugin %s was successfully re-enabled in version %s", spec.Alias, spec.Version),
		}
	}

	// another version under the same alias is in the way
	if installed != nil {
		c.logger.Info().Str("installed", installed.Name).Str("wanted", spec.LocalRef()).Msg("replacing plugin version")

		if err := c.api.PluginDisable(ctx, installed.Name, dockertypes.PluginDisableOptions{Force: true}); err != nil {
			c.logger.Warn().Err(err).Str("plugin", installed.Name).Msg("could not disable old plugin version")
		}
		if err := c.api.PluginRemove(ctx, installed.Name, dockertypes.PluginRemoveOptions{Force: true}); err != nil {
			return types.ChangeRecord{Name: spec.Alias, Failed: true, Message: err.Error()}
		}
	}

	reader, err := c.api.PluginInstall(ctx, spec.LocalRef(), dockertypes.PluginInstallOptions{
		RemoteRef:            spec.RemoteRef(),
		AcceptAllPermissions: true,
		Disabled:             true,
	})
	if err != nil {
		return types.ChangeRecord{Name: spec.Alias, Failed: true, Message: err.Error()}
	}
	// the install only completes once the progress stream is drained
	_, _ = io.Copy(io.Discard, reader)
	_ = reader.Close()

	if err := c.api.PluginEnable(ctx, spec.LocalRef(), dockertypes.PluginEnableOptions{Timeout: int(enableTimeout.Seconds())}); err != nil {
		return types.ChangeRecord{Name: spec.Alias, Failed: true, Message: err.Error()}
	}

	return types.ChangeRecord{
		Name:    spec.Alias,
		Changed: true,
		Message: fmt.Sprintf("plugin %s was successfully installed in version %s", spec.Alias, spec.Version),
	}
}

func (c *Client) removePlugin(ctx context.Context, spec PluginSpec, installed *dockertypes.Plugin) types.ChangeRecord {
	if installed == nil {
		return types.ChangeRecord{
			Name:    spec.Alias,
			Message: fmt.Sprintf("plugin %s is not installed", spec.Alias),
		}
	}

	if installed.Enabled {
		if err := c.api.PluginDisable(ctx, installed.Name, dockertypes.PluginDisableOptions{Force: true}); err != nil {
			return types.ChangeRecord{Name: spec.Alias, Failed: true, Message: err.Error()}
		}
	}
	if err := c.api.PluginRemove(ctx, installed.Name, dockertypes.PluginRemoveOptions{}); err != nil {
		return types.ChangeRecord{Name: spec.Alias, Failed: true, Message: err.Error()}
	}

	return types.ChangeRecord{
		Name:    spec.Alias,
		Changed: true,
		Message: fmt.Sprintf("plugin %s was successfully removed", spec.Alias),
	}
}

// findPlugin looks the alias up in the engine's plugin list. The
// alias matches regardless of the installed version.
func (c *Client) findPlugin(ctx context.Context, alias string) (*dockertypes.Plugin, error) {
	plugins, err := c.api.PluginList(ctx, filters.Args{})
	if err != nil {
		return nil, err
	}

	for _, plugin := range plugins {
		shortName, _, _ := strings.Cut(plugin.Name, ":")
		if shortName == alias {
			return plugin, nil
		}
	}
	return nil, nil
}
