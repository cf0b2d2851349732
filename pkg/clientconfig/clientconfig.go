// Package clientconfig reconciles per-user Docker client configuration
// files (config.json). Registry credentials are validated and encoded,
// CLI output formats become {command}Format table strings, and the file
// is only rewritten when its content digest changes.
package clientconfig

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/confrag/confrag/pkg/checksum"
	"github.com/confrag/confrag/pkg/errors"
	"github.com/confrag/confrag/pkg/fragment"
	"github.com/confrag/confrag/pkg/logging"
	"github.com/confrag/confrag/pkg/ownership"
	"github.com/confrag/confrag/pkg/types"
)

// Auth holds the credentials for one registry. Either Auth (a ready
// base64 token) or Username plus Password may be set, never both.
type Auth struct {
	Auth     string `yaml:"auth,omitempty" json:"auth,omitempty"`
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`
}

// Config declares one client configuration file
type Config struct {
	Location string              `yaml:"location" json:"location"`
	State    string              `yaml:"state,omitempty" json:"state,omitempty"`
	Enabled  *bool               `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Owner    string              `yaml:"owner,omitempty" json:"owner,omitempty"`
	Group    string              `yaml:"group,omitempty" json:"group,omitempty"`
	Mode     string              `yaml:"mode,omitempty" json:"mode,omitempty"`
	Auths    map[string]Auth     `yaml:"auths,omitempty" json:"auths,omitempty"`
	Formats  map[string][]string `yaml:"formats,omitempty" json:"formats,omitempty"`
}

func (c Config) enabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Reconciler manages a batch of client configuration files. The cache
// directory holds checksum files written by earlier tool generations;
// they are removed on sight since digests are recomputed from content.
type Reconciler struct {
	fs             types.FS
	cacheDirectory string
	writer         *fragment.Writer
	logger         zerolog.Logger
}

func NewReconciler(fsys types.FS, cacheDirectory string) (*Reconciler, error) {
	writer, err := fragment.New(fsys, "client-config")
	if err != nil {
		return nil, err
	}

	return &Reconciler{
		fs:             fsys,
		cacheDirectory: cacheDirectory,
		writer:         writer,
		logger:         logging.GetLogger("clientconfig.reconciler"),
	}, nil
}

// Close removes the reconciler's scratch space
func (r *Reconciler) Close() error {
	return r.writer.Close()
}

// Reconcile processes the configs in input order, one record per
// config keyed by its location.
func (r *Reconciler) Reconcile(configs []Config) types.Summary {
	var summary types.Summary

	for _, cfg := range configs {
		if cfg.Location == "" {
			summary.Add(types.ChangeRecord{Failed: true, Message: "no location has been configured"})
			continue
		}
		summary.Add(r.reconcileConfig(cfg))
	}
	return summary
}

func (r *Reconciler) reconcileConfig(cfg Config) types.ChangeRecord {
	if err := validate(cfg); err != nil {
		return types.ChangeRecord{Name: cfg.Location, Failed: true, Message: err.Error()}
	}

	r.removeCacheFile(cfg.Location)

	if cfg.EffectiveState() == types.StateAbsent {
		changed, err := r.writer.Remove(cfg.Location)
		if err != nil {
			return types.ChangeRecord{Name: cfg.Location, Failed: true, Message: err.Error()}
		}

		msg := "The Docker Client configuration does not exist."
		if changed {
			msg = "The Docker Client configuration has been removed."
		}
		return types.ChangeRecord{Name: cfg.Location, Changed: changed, Message: msg}
	}

	if !cfg.enabled() {
		msg := "The creation of the Docker Client configuration has been deactivated."
		if _, err := r.fs.Stat(cfg.Location); err == nil {
			msg += "\nHowever, a configuration file already exists. Use 'state=absent' to remove it."
		}
		return types.ChangeRecord{Name: cfg.Location, Message: msg}
	}

	if invalid := invalidAuths(cfg.Auths); len(invalid) > 0 {
		return types.ChangeRecord{
			Name:    cfg.Location,
			Failed:  true,
			Message: fmt.Sprintf("invalid authentications: %s", strings.Join(invalid, "; ")),
		}
	}

	content, err := Render(cfg)
	if err != nil {
		return types.ChangeRecord{Name: cfg.Location, Failed: true, Message: err.Error()}
	}

	_, existed, err := checksum.FromFile(r.fs, cfg.Location)
	if err != nil {
		return types.ChangeRecord{Name: cfg.Location, Failed: true, Message: err.Error()}
	}

	changed, err := r.writer.Reconcile(cfg.Location, content)
	if err != nil {
		r.logger.Error().Err(err).Str("location", cfg.Location).Msg("could not write client configuration")
		return types.ChangeRecord{Name: cfg.Location, Failed: true, Message: err.Error()}
	}

	spec := ownership.Spec{Owner: cfg.Owner, Group: cfg.Group, Mode: cfg.Mode}
	if !spec.IsZero() {
		if err := ownership.Apply(cfg.Location, spec); err != nil {
			return types.ChangeRecord{Name: cfg.Location, Failed: true, Message: err.Error()}
		}
	}

	msg := "The Docker Client configuration has not been changed."
	if changed {
		msg = "The Docker Client configuration was successfully updated."
		if !existed {
			msg = "The Docker Client configuration was successfully created."
		}
	}
	return types.ChangeRecord{Name: cfg.Location, Changed: changed, Message: msg}
}

// EffectiveState treats an empty state as present
func (c Config) EffectiveState() string {
	if c.State == "" {
		return types.StatePresent
	}
	return c.State
}

// Render builds the config.json content for one configuration.
// Registries and format sections come from unordered maps, so both are
// emitted in sorted key order for stable output.
func Render(cfg Config) ([]byte, error) {
	doc := types.Mapping{}

	auths := types.Mapping{}
	for _, registry := range sortedKeys(cfg.Auths) {
		token, ok := encodeAuth(cfg.Auths[registry])
		if !ok {
			continue
		}
		auths.Set(registry, types.Mapping{{Key: "auth", Value: token}})
	}
	if len(auths) > 0 {
		doc.Set("auths", auths)
	}

	for _, section := range sortedKeys(cfg.Formats) {
		fields := cfg.Formats[section]
		if len(fields) == 0 {
			continue
		}
		doc.Set(section+"Format", tableFormat(fields))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrSerialize, "could not serialize client configuration")
	}
	return buf.Bytes(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// tableFormat joins field selectors into a Docker CLI table format
// string: "table {{.ID}}\t{{.Names}}". Fields keep their leading dot.
func tableFormat(fields []string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, "{{"+f+"}}")
	}
	return "table " + strings.Join(parts, "\t")
}

// encodeAuth returns the base64 token for a registry. A ready token
// wins; a username/password pair is encoded as user:pass. Entries
// without any credentials are skipped.
func encodeAuth(creds Auth) (string, bool) {
	if creds.Auth != "" {
		return creds.Auth, true
	}
	if creds.Username == "" && creds.Password == "" {
		return "", false
	}
	token := creds.Username + ":" + creds.Password
	return base64.StdEncoding.EncodeToString([]byte(token)), true
}

func validate(cfg Config) error {
	switch cfg.EffectiveState() {
	case types.StatePresent, types.StateAbsent:
	default:
		return errors.Newf(errors.ErrInvalidInput,
			"wrong state %q, only 'present' and 'absent' are supported", cfg.State)
	}
	return nil
}

// invalidAuths collects the registries whose credentials are
// contradictory or incomplete, sorted for stable messages.
func invalidAuths(auths map[string]Auth) []string {
	var invalid []string

	for registry, creds := range auths {
		if msg, ok := validateAuth(creds); !ok {
			invalid = append(invalid, fmt.Sprintf("%s: %s", registry, msg))
		}
	}
	sort.Strings(invalid)
	return invalid
}

func validateAuth(creds Auth) (string, bool) {
	hasAuth := creds.Auth != ""
	hasUser := creds.Username != ""
	hasPass := creds.Password != ""

	switch {
	case !hasAuth && !hasUser && !hasPass:
		return "no authentication defined", true
	case hasAuth && !hasUser && !hasPass:
		return "base64 authentication defined", true
	case hasAuth:
		return "define either 'auth' or 'username/password', not both", false
	case !hasUser || !hasPass:
		return "both 'username' and 'password' must be set", false
	default:
		return "username/password authentication defined", true
	}
}

// removeCacheFile drops the legacy checksum cache entry for a
// location, named after the digest of the location string.
func (r *Reconciler) removeCacheFile(location string) {
	if r.cacheDirectory == "" {
		return
	}

	name := fmt.Sprintf("client_%s.checksum", checksum.FromString(location))
	path := filepath.Join(r.cacheDirectory, name)

	if _, err := r.fs.Stat(path); err == nil {
		if err := r.fs.Remove(path); err != nil {
			r.logger.Warn().Err(err).Str("path", path).Msg("could not remove stale checksum file")
		}
	}
}
