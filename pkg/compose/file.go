package compose

import (
	"fmt"
	"path/filepath"

	"github.com/confrag/confrag/pkg/types"
)

// FileSpec describes a single, complete compose file managed as one
// unit instead of per-entity fragments.
type FileSpec struct {
	Name     string
	State    string
	Version  string
	Networks types.Mapping
	Services types.Mapping
	Volumes  types.Mapping
}

// ReconcileFile manages one whole compose file under the base
// directory. Empty sections are omitted from the document.
func (r *Reconciler) ReconcileFile(spec FileSpec) types.ChangeRecord {
	if spec.Name == "" {
		return types.ChangeRecord{Failed: true, Message: "a compose file needs a name"}
	}

	target := filepath.Join(r.baseDirectory, spec.Name)

	if spec.State == types.StateAbsent {
		changed, err := r.writer.Remove(target)
		if err != nil {
			return types.ChangeRecord{Name: spec.Name, Failed: true, Message: err.Error()}
		}

		msg := fmt.Sprintf("The compose file '%s' has already been deleted.", spec.Name)
		if changed {
			msg = fmt.Sprintf("The compose file '%s' was successfully deleted.", spec.Name)
		}
		return types.ChangeRecord{Name: spec.Name, Changed: changed, Message: msg}
	}

	doc := types.Mapping{}
	if spec.Version != "" {
		doc.Set("version", spec.Version)
	}
	if len(spec.Networks) > 0 {
		doc.Set(TypeNetworks, spec.Networks)
	}
	if len(spec.Services) > 0 {
		doc.Set(TypeServices, spec.Services)
	}
	if len(spec.Volumes) > 0 {
		doc.Set(TypeVolumes, spec.Volumes)
	}

	content, err := r.yaml.Dump(doc)
	if err != nil {
		return types.ChangeRecord{Name: spec.Name, Failed: true, Message: err.Error()}
	}

	changed, err := r.writer.Reconcile(target, content)
	if err != nil {
		return types.ChangeRecord{Name: spec.Name, Failed: true, Message: err.Error()}
	}

	msg := fmt.Sprintf("The compose file '%s' has not been changed.", spec.Name)
	if changed {
		msg = fmt.Sprintf("The compose file '%s' was successfully written.", spec.Name)
	}
	return types.ChangeRecord{Name: spec.Name, Changed: changed, Message: msg}
}
