// Package compose reconciles Docker Compose fragment files. Each
// network, service or volume entity owns one `<name>.conf` YAML
// fragment under the base directory.
package compose

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/confrag/confrag/pkg/errors"
	"github.com/confrag/confrag/pkg/format"
	"github.com/confrag/confrag/pkg/fragment"
	"github.com/confrag/confrag/pkg/logging"
	"github.com/confrag/confrag/pkg/paths"
	"github.com/confrag/confrag/pkg/types"
)

// Compose fragment families
const (
	TypeNetworks = "networks"
	TypeServices = "services"
	TypeVolumes  = "volumes"
)

// Batch is one invocation's worth of declared compose entities
type Batch struct {
	Networks []types.Entity
	Services []types.Entity
	Volumes  []types.Entity
}

// Result carries per-family summaries plus the folded batch flags
type Result struct {
	Changed  bool
	Failed   bool
	Networks types.Summary
	Services types.Summary
	Volumes  types.Summary
}

// Reconciler manages compose fragments below one base directory
type Reconciler struct {
	fs            types.FS
	baseDirectory string
	writer        *fragment.Writer
	yaml          format.Writer
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

	writer, err := fragment.New(fsys, "compose")
	if err != nil {
		return nil, err
	}

	return &Reconciler{
		fs:            fsys,
		baseDirectory: baseDirectory,
		writer:        writer,
		yaml:          format.YAMLWriter{},
		logger:        logging.GetLogger("compose.reconciler"),
	}, nil
}

// Close removes the reconciler's scratch space
func (r *Reconciler) Close() error {
	return r.writer.Close()
}

// Reconcile brings every fragment of the batch in line with its
// declared state. Entities are processed in input order; a failing
// entity never aborts its siblings.
func (r *Reconciler) Reconcile(batch Batch) Result {
	networks := r.reconcileSet(batch.Networks, TypeNetworks)
	services := r.reconcileSet(batch.Services, TypeServices)
	volumes := r.reconcileSet(batch.Volumes, TypeVolumes)

	return Result{
		Changed:  networks.Changed || services.Changed || volumes.Changed,
		Failed:   networks.Failed || services.Failed || volumes.Failed,
		Networks: networks,
		Services: services,
		Volumes:  volumes,
	}
}

func (r *Reconciler) reconcileSet(entities []types.Entity, composeType string) types.Summary {
	var summary types.Summary

	for _, entity := range entities {
		if entity.Name == "" {
			continue
		}

		summary.Add(r.reconcileEntity(entity, composeType))
	}
	return summary
}

func (r *Reconciler) reconcileEntity(entity types.Entity, composeType string) types.ChangeRecord {
	target := paths.ComposeFragment(r.baseDirectory, entity.Name)

	if entity.EffectiveState() == types.StateAbsent {
		changed, err := r.writer.Remove(target)
		if err != nil {
			r.logger.Error().Err(err).Str("name", entity.Name).Msg("could not remove compose fragment")
			return types.ChangeRecord{Name: entity.Name, Failed: true, Message: err.Error()}
		}

		msg := fmt.Sprintf("The compose file '%s.conf' has already been deleted.", entity.Name)
		if changed {
			msg = fmt.Sprintf("The compose file '%s.conf' was successfully deleted.", entity.Name)
		}
		return types.ChangeRecord{Name: entity.Name, Changed: changed, Message: msg}
	}

	content, err := r.yaml.Dump(Document(composeType, entity))
	if err != nil {
		return types.ChangeRecord{Name: entity.Name, Failed: true, Message: err.Error()}
	}

	changed, err := r.writer.Reconcile(target, content)
	if err != nil {
		r.logger.Error().Err(err).Str("name", entity.Name).Msg("could not write compose fragment")
		return types.ChangeRecord{Name: entity.Name, Failed: true, Message: err.Error()}
	}

	msg := fmt.Sprintf("The compose file '%s.conf' has not been changed.", entity.Name)
	if changed {
		msg = fmt.Sprintf("The compose file '%s.conf' was successfully written.", entity.Name)
	}
	return types.ChangeRecord{Name: entity.Name, Changed: changed, Message: msg}
}

// Document wraps an entity's payload under its compose type key:
// {composeType: {name: payload}}. The payload keeps its declared key
// order and is copied, never aliased, so later mutation of the result
// cannot touch the input.
func Document(composeType string, entity types.Entity) types.Mapping {
	payload := append(types.Mapping(nil), entity.Payload...)

	return types.Mapping{
		{Key: composeType, Value: types.Mapping{
			{Key: entity.Name, Value: payload},
		}},
	}
}
