// Package config loads the tool configuration: built-in defaults,
// an optional TOML file, then CONFRAG_ environment overrides, each
// layer winning over the one before it.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/confrag/confrag/pkg/errors"
)

// Config holds the runtime settings of the tool
type Config struct {
	ComposeDirectory    string `koanf:"compose_directory"`
	ContainerDirectory  string `koanf:"container_directory"`
	DaemonConfigFile    string `koanf:"daemon_config_file"`
	CacheDirectory      string `koanf:"cache_directory"`
	DockerSocket        string `koanf:"docker_socket"`
	Verbosity           int    `koanf:"verbosity"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"compose_directory":   "/etc/docker/compose",
		"container_directory": "/etc/docker/container",
		"daemon_config_file":  "/etc/docker/daemon.json",
		"cache_directory":     "/var/cache/confrag",
		"docker_socket":       "",
		"verbosity":           0,
	}
}

// DefaultPath is the config file consulted when none is given
// explicitly.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "confrag", "confrag.toml")
}

// Load builds the configuration. An empty path means "use the
// default location if it exists"; a named path must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "could not load default configuration")
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "could not load configuration from %q", path)
		}
	} else if explicit {
		return nil, errors.Wrapf(err, errors.ErrFileNotFound, "configuration file %q does not exist", path)
	}

	// keys are flat, CONFRAG_COMPOSE_DIRECTORY maps to compose_directory
	if err := k.Load(env.Provider("CONFRAG_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "CONFRAG_"))
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "could not load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "could not unmarshal configuration")
	}
	return &cfg, nil
}
