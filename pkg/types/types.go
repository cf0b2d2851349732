package types

import (
	"io/fs"

	"gopkg.in/yaml.v3"
)

// Entity states. An entity without an explicit state is treated as present.
const (
	StatePresent = "present"
	StateAbsent  = "absent"
)

// Entity is a named, declaratively described configuration unit
// (a network, service, volume or container). The payload carries
// arbitrary configuration keys that end up serialized into the
// entity's fragment.
type Entity struct {
	Name    string
	State   string
	Payload Mapping
}

// UnmarshalYAML decodes an entity from a manifest mapping: name and
// state are lifted out, every other key lands in the payload in
// declaration order.
func (e *Entity) UnmarshalYAML(value *yaml.Node) error {
	var m Mapping
	if err := m.UnmarshalYAML(value); err != nil {
		return err
	}

	entity := Entity{}
	for _, p := range m {
		switch p.Key {
		case "name":
			if s, ok := p.Value.(string); ok {
				entity.Name = s
			}
		case "state":
			if s, ok := p.Value.(string); ok {
				entity.State = s
			}
		default:
			entity.Payload = append(entity.Payload, p)
		}
	}
	*e = entity
	return nil
}

// EffectiveState returns the entity state, defaulting to present
func (e Entity) EffectiveState() string {
	if e.State == "" {
		return StatePresent
	}
	return e.State
}

// ChangeRecord is the result of reconciling a single entity
type ChangeRecord struct {
	Name    string
	Changed bool
	Failed  bool
	Message string
}

// Summary aggregates the change records of one batch. Changed and
// Failed are the logical OR over all records.
type Summary struct {
	Changed bool
	Failed  bool
	Records []ChangeRecord
}

// Add appends a record and folds its flags into the summary
func (s *Summary) Add(rec ChangeRecord) {
	s.Records = append(s.Records, rec)
	s.Changed = s.Changed || rec.Changed
	s.Failed = s.Failed || rec.Failed
}

// Merge folds another summary into this one
func (s *Summary) Merge(other Summary) {
	s.Records = append(s.Records, other.Records...)
	s.Changed = s.Changed || other.Changed
	s.Failed = s.Failed || other.Failed
}

// FS abstracts the filesystem operations the reconcilers need, so
// tests can substitute an in-memory implementation.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
}
