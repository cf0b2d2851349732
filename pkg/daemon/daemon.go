// Package daemon reconciles the Docker daemon configuration file
// (daemon.json). Options are declared under their snake_case names,
// validated against the values Docker accepts, and mapped to the
// daemon's kebab-case keys.
package daemon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/confrag/confrag/pkg/checksum"
	"github.com/confrag/confrag/pkg/errors"
	"github.com/confrag/confrag/pkg/fragment"
	"github.com/confrag/confrag/pkg/logging"
	"github.com/confrag/confrag/pkg/types"
)

// DefaultConfigFile is where dockerd looks for its configuration
const DefaultConfigFile = "/etc/docker/daemon.json"

// Options maps snake_case option names to their desired values
type Options map[string]interface{}

// param couples an option name with its daemon.json key. The slice
// fixes the order the keys appear in the generated file.
type param struct {
	name      string
	dockerKey string
}

var params = []param{
	{"data_root", "data-root"},
	{"debug", "debug"},
	{"log_driver", "log-driver"},
	{"log_level", "log-level"},
	{"log_opts", "log-opts"},
	{"storage_driver", "storage-driver"},
	{"storage_opts", "storage-opts"},
	{"dns", "dns"},
	{"hosts", "hosts"},
	{"metrics_addr", "metrics-addr"},
	{"exec_opts", "exec-opts"},
	{"insecure_registries", "insecure-registries"},
	{"registry_mirrors", "registry-mirrors"},
	{"default_runtime", "default-runtime"},
}

var allowedValues = map[string][]string{
	"log_level":      {"debug", "info", "warn", "error", "fatal"},
	"log_driver":     {"json-file", "syslog", "journald", "local", "loki"},
	"storage_driver": {"overlay2", "aufs", "zfs", "btrfs", "devicemapper", "vfs", "fuse-overlayfs"},
}

// Reconciler manages one daemon.json file
type Reconciler struct {
	fs         types.FS
	configFile string
	writer     *fragment.Writer
	logger     zerolog.Logger
}

func NewReconciler(fsys types.FS, configFile string) (*Reconciler, error) {
	if configFile == "" {
		configFile = DefaultConfigFile
	}

	writer, err := fragment.New(fsys, "daemon")
	if err != nil {
		return nil, err
	}

	return &Reconciler{
		fs:         fsys,
		configFile: configFile,
		writer:     writer,
		logger:     logging.GetLogger("daemon.reconciler"),
	}, nil
}

// Close removes the reconciler's scratch space
func (r *Reconciler) Close() error {
	return r.writer.Close()
}

// Reconcile brings the daemon configuration in line with the declared
// options, or removes it when state is absent. Any other state fails
// the invocation without touching the file.
func (r *Reconciler) Reconcile(opts Options, state string) types.ChangeRecord {
	switch state {
	case "", types.StatePresent, types.StateAbsent:
	default:
		return types.ChangeRecord{
			Name:   r.configFile,
			Failed: true,
			Message: fmt.Sprintf(
				"wrong state %q, only 'present' and 'absent' are supported", state),
		}
	}

	if state == types.StateAbsent {
		changed, err := r.writer.Remove(r.configFile)
		if err != nil {
			return types.ChangeRecord{Name: r.configFile, Failed: true, Message: err.Error()}
		}

		msg := "The configuration does not exist."
		if changed {
			msg = "config removed"
		}
		return types.ChangeRecord{Name: r.configFile, Changed: changed, Message: msg}
	}

	content, err := render(opts)
	if err != nil {
		return types.ChangeRecord{Name: r.configFile, Failed: true, Message: err.Error()}
	}

	_, existed, err := checksum.FromFile(r.fs, r.configFile)
	if err != nil {
		return types.ChangeRecord{Name: r.configFile, Failed: true, Message: err.Error()}
	}

	changed, err := r.writer.Reconcile(r.configFile, content)
	if err != nil {
		r.logger.Error().Err(err).Str("path", r.configFile).Msg("could not write daemon configuration")
		return types.ChangeRecord{Name: r.configFile, Failed: true, Message: err.Error()}
	}

	msg := "The configuration has not been changed."
	if changed {
		msg = "The configuration has been successfully updated."
		if !existed {
			msg = "The configuration was successfully created."
		}
	}
	return types.ChangeRecord{Name: r.configFile, Changed: changed, Message: msg}
}

// Preview renders the configuration Reconcile would write and returns
// a readable diff against the current file content. An empty string
// means the file is already up to date.
func (r *Reconciler) Preview(opts Options) (string, error) {
	content, err := render(opts)
	if err != nil {
		return "", err
	}

	current, err := r.fs.ReadFile(r.configFile)
	if err != nil {
		current = nil
	}
	if bytes.Equal(current, content) {
		return "", nil
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(current), string(content), false)
	return dmp.DiffPrettyText(diffs), nil
}

func render(opts Options) ([]byte, error) {
	doc, err := Build(opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrSerialize, "could not serialize daemon configuration")
	}
	return buf.Bytes(), nil
}

// Build validates the options and produces the daemon.json document,
// keys in their canonical daemon.json order. Unset and falsy values
// are dropped; declaring metrics_addr switches experimental mode on
// since dockerd refuses the option without it.
func Build(opts Options) (types.Mapping, error) {
	for name := range opts {
		if !knownParam(name) {
			return nil, errors.Newf(errors.ErrInvalidInput,
				"unknown parameter %q, allowed keys are: %s", name, strings.Join(allowedKeys(), ", "))
		}
	}

	doc := types.Mapping{}

	for _, p := range params {
		value, ok := opts[p.name]
		if !ok || isFalsy(value) {
			continue
		}

		if allowed, ok := allowedValues[p.name]; ok {
			if err := checkAllowed(p.name, value, allowed); err != nil {
				return nil, err
			}
		}

		if m, ok := value.(map[string]interface{}); ok {
			value = valuesAsStrings(m)
		}

		doc.Set(p.dockerKey, value)
	}

	if doc.Has("metrics-addr") {
		doc.Set("experimental", true)
	}

	return doc, nil
}

// checkAllowed validates an enumerated option. Log drivers provided
// by plugins carry a version suffix (loki:2.9.1); only the part
// before the colon is checked.
func checkAllowed(name string, value interface{}, allowed []string) error {
	s, ok := value.(string)
	if !ok {
		return errors.Newf(errors.ErrInvalidInput, "parameter %q must be a string", name)
	}

	base := s
	if name == "log_driver" {
		base, _, _ = strings.Cut(s, ":")
	}

	for _, a := range allowed {
		if base == a {
			return nil
		}
	}
	return errors.Newf(errors.ErrInvalidInput,
		"invalid value %q for parameter %q, allowed values are: %s", s, name, strings.Join(allowed, ", "))
}

// valuesAsStrings renders nested option maps (log-opts and friends)
// with string values, which is what dockerd expects.
func valuesAsStrings(values map[string]interface{}) types.Mapping {
	out := types.Mapping{}
	for _, k := range sortedKeys(values) {
		switch x := values[k].(type) {
		case string:
			out.Set(k, x)
		case bool:
			if x {
				out.Set(k, "true")
			} else {
				out.Set(k, "false")
			}
		default:
			out.Set(k, fmt.Sprintf("%v", x))
		}
	}
	return out
}

func isFalsy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case map[string]interface{}:
		return len(x) == 0
	case []interface{}:
		return len(x) == 0
	case []string:
		return len(x) == 0
	default:
		return false
	}
}

func knownParam(name string) bool {
	for _, p := range params {
		if p.name == name {
			return true
		}
	}
	return false
}

func allowedKeys() []string {
	keys := make([]string, 0, len(params))
	for _, p := range params {
		keys = append(keys, p.name)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
