// Package environments reconciles per-container configuration files:
// the container.env environment file, java-style property files and
// arbitrary typed config files (yaml, json, toml, ini, xml). Each
// container owns one subdirectory below the base directory. A changed
// file marks the container for recreation so the caller can restart
// whatever consumes the file.
package environments

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/confrag/confrag/pkg/errors"
	"github.com/confrag/confrag/pkg/format"
	"github.com/confrag/confrag/pkg/fragment"
	"github.com/confrag/confrag/pkg/logging"
	"github.com/confrag/confrag/pkg/paths"
	"github.com/confrag/confrag/pkg/types"
)

// PropertyFile is an additional named property file of a container
type PropertyFile struct {
	Name       string        `yaml:"name" json:"name"`
	Properties types.Mapping `yaml:"properties" json:"properties"`
}

// ConfigFile is a typed configuration file of a container
type ConfigFile struct {
	Name string        `yaml:"name" json:"name"`
	Type string        `yaml:"type" json:"type"`
	Data types.Mapping `yaml:"data" json:"data"`
}

// Container declares the desired configuration files of one container.
// File payloads decode into ordered mappings so the generated files
// list keys the way the manifest declares them. Rest carries any
// further container keys (image, hostname, ...) the caller wants
// passed through untouched.
type Container struct {
	Name          string                 `yaml:"name" json:"name"`
	State         string                 `yaml:"state,omitempty" json:"state,omitempty"`
	Environments  types.Mapping          `yaml:"environments,omitempty" json:"environments,omitempty"`
	Properties    types.Mapping          `yaml:"properties,omitempty" json:"properties,omitempty"`
	PropertyFiles []PropertyFile         `yaml:"property_files,omitempty" json:"property_files,omitempty"`
	ConfigFiles   []ConfigFile           `yaml:"config_files,omitempty" json:"config_files,omitempty"`
	Recreate      bool                   `yaml:"recreate,omitempty" json:"recreate,omitempty"`
	Rest          map[string]interface{} `yaml:",inline" json:"-"`
}

// Result is the outcome of one batch. Containers holds fresh copies
// of the input with handled keys dropped and Recreate set where any
// of the container's files changed; the input is never mutated.
type Result struct {
	Changed    bool
	Failed     bool
	Containers []Container
	Summary    types.Summary
}

// Reconciler manages container configuration files below one base
// directory.
type Reconciler struct {
	fs            types.FS
	baseDirectory string
	writer        *fragment.Writer
	logger        zerolog.Logger
}

// NewReconciler validates the base directory, creates it if missing
// and prepares scratch space. Close releases the scratch space.
func NewReconciler(fsys types.FS, baseDirectory string) (*Reconciler, error) {
	if baseDirectory == "" {
		return nil, errors.New(errors.ErrInvalidInput, "base_directory must not be empty")
	}

	if err := fsys.MkdirAll(baseDirectory, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "could not create base directory %q", baseDirectory)
	}

	writer, err := fragment.New(fsys, "environments")
	if err != nil {
		return nil, err
	}

	return &Reconciler{
		fs:            fsys,
		baseDirectory: baseDirectory,
		writer:        writer,
		logger:        logging.GetLogger("environments.reconciler"),
	}, nil
}

// Close removes the reconciler's scratch space
func (r *Reconciler) Close() error {
	return r.writer.Close()
}

// Reconcile processes containers in input order. A failing container
// never aborts its siblings.
func (r *Reconciler) Reconcile(containers []Container) Result {
	result := Result{Containers: make([]Container, 0, len(containers))}

	for _, c := range containers {
		if c.Name == "" {
			continue
		}

		out, rec := r.reconcileContainer(c)
		result.Containers = append(result.Containers, out)
		result.Summary.Add(rec)
	}

	result.Changed = result.Summary.Changed
	result.Failed = result.Summary.Failed
	return result
}

func (r *Reconciler) reconcileContainer(c Container) (Container, types.ChangeRecord) {
	out := passthrough(c)

	if c.State == types.StateAbsent {
		changed, err := r.removeAll(c)
		if err != nil {
			return out, types.ChangeRecord{Name: c.Name, Failed: true, Message: err.Error()}
		}

		msg := "nothing to remove"
		if changed {
			msg = "configuration files removed"
		}
		return out, types.ChangeRecord{Name: c.Name, Changed: changed, Message: msg}
	}

	var written, removed []string
	note := func(name string, changed bool, gone bool) {
		if !changed {
			return
		}
		if gone {
			removed = append(removed, name)
		} else {
			written = append(written, name)
		}
	}

	envChanged, err := r.reconcileFile(paths.EnvironmentFile(r.baseDirectory, c.Name), format.EnvWriter{}, c.Environments)
	if err != nil {
		return out, types.ChangeRecord{Name: c.Name, Failed: true, Message: err.Error()}
	}
	note("container.env", envChanged, len(c.Environments) == 0)

	for _, prop := range c.PropertyFiles {
		if prop.Name == "" {
			continue
		}

		changed, err := r.reconcileFile(paths.ContainerFile(r.baseDirectory, c.Name, prop.Name), format.PropertiesWriter{}, prop.Properties)
		if err != nil {
			return out, types.ChangeRecord{Name: c.Name, Failed: true, Message: err.Error()}
		}
		note(prop.Name, changed, len(prop.Properties) == 0)
	}

	// the default property file is always reconciled so a dropped
	// properties block removes the stale file
	propChanged, err := r.reconcileFile(paths.PropertiesFile(r.baseDirectory, c.Name), format.PropertiesWriter{}, c.Properties)
	if err != nil {
		return out, types.ChangeRecord{Name: c.Name, Failed: true, Message: err.Error()}
	}
	note(c.Name+".properties", propChanged, len(c.Properties) == 0)

	for _, cfg := range c.ConfigFiles {
		if cfg.Name == "" {
			continue
		}

		changed, err := r.reconcileConfigFile(c.Name, cfg)
		if err != nil {
			return out, types.ChangeRecord{Name: c.Name, Failed: true, Message: err.Error()}
		}
		note(cfg.Name, changed, len(cfg.Data) == 0)
	}

	if len(written) > 0 || len(removed) > 0 {
		out.Recreate = true

		var parts []string
		if len(written) > 0 {
			parts = append(parts, fmt.Sprintf("%s successfully written", strings.Join(written, ", ")))
		}
		if len(removed) > 0 {
			parts = append(parts, fmt.Sprintf("%s successfully removed", strings.Join(removed, ", ")))
		}
		return out, types.ChangeRecord{
			Name:    c.Name,
			Changed: true,
			Message: strings.Join(parts, "; "),
		}
	}

	return out, types.ChangeRecord{Name: c.Name, Message: "nothing changed"}
}

// reconcileFile writes one line-oriented file, or removes it when the
// payload is empty.
func (r *Reconciler) reconcileFile(target string, w format.Writer, payload types.Mapping) (bool, error) {
	if len(payload) == 0 {
		return r.writer.Remove(target)
	}

	content, err := w.Dump(payload)
	if err != nil {
		return false, err
	}
	return r.writer.Reconcile(target, content)
}

func (r *Reconciler) reconcileConfigFile(containerName string, cfg ConfigFile) (bool, error) {
	target := paths.ContainerFile(r.baseDirectory, containerName, cfg.Name)

	if len(cfg.Data) == 0 {
		return r.writer.Remove(target)
	}

	configType := cfg.Type
	if configType == "" {
		configType = "yaml"
	}

	w, err := format.Resolve(configType)
	if err != nil {
		return false, err
	}

	content, err := w.Dump(cfg.Data)
	if err != nil {
		return false, err
	}
	return r.writer.Reconcile(target, content)
}

// removeAll drops every file the container owns
func (r *Reconciler) removeAll(c Container) (bool, error) {
	dir := paths.ContainerDir(r.baseDirectory, c.Name)

	if _, err := r.fs.Stat(dir); err != nil {
		return false, nil
	}
	if err := r.fs.RemoveAll(dir); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileRemove, "could not remove %q", dir)
	}
	return true, nil
}

// passthrough copies the container for the result, dropping the keys
// this reconciler consumed.
func passthrough(c Container) Container {
	rest := make(map[string]interface{}, len(c.Rest))
	for k, v := range c.Rest {
		rest[k] = v
	}

	return Container{
		Name:  c.Name,
		State: c.State,
		Rest:  rest,
	}
}
