// Package ownership applies owner, group and mode to managed files.
// Names are resolved through the system user and group databases;
// numeric ids are accepted as-is.
package ownership

import (
	"os"
	"os/user"
	"strconv"

	"github.com/confrag/confrag/pkg/errors"
)

// Spec describes the desired file ownership. Empty fields are left
// untouched. Mode is an octal string such as "0644".
type Spec struct {
	Owner string `yaml:"owner,omitempty" json:"owner,omitempty"`
	Group string `yaml:"group,omitempty" json:"group,omitempty"`
	Mode  string `yaml:"mode,omitempty" json:"mode,omitempty"`
}

// IsZero reports whether the spec requests no changes
func (s Spec) IsZero() bool {
	return s.Owner == "" && s.Group == "" && s.Mode == ""
}

// Apply sets ownership and mode on path. Chown is skipped entirely
// when neither owner nor group is requested, so unprivileged runs
// that only manage modes keep working.
func Apply(path string, spec Spec) error {
	if spec.Owner != "" || spec.Group != "" {
		uid, gid := -1, -1

		if spec.Owner != "" {
			id, err := lookupUID(spec.Owner)
			if err != nil {
				return err
			}
			uid = id
		}
		if spec.Group != "" {
			id, err := lookupGID(spec.Group)
			if err != nil {
				return err
			}
			gid = id
		}

		if err := os.Chown(path, uid, gid); err != nil {
			return errors.Wrapf(err, errors.ErrOwnership, "could not chown %q", path)
		}
	}

	if spec.Mode != "" {
		mode, err := strconv.ParseUint(spec.Mode, 8, 32)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInvalidInput, "invalid mode %q", spec.Mode)
		}
		if err := os.Chmod(path, os.FileMode(mode)); err != nil {
			return errors.Wrapf(err, errors.ErrOwnership, "could not chmod %q", path)
		}
	}

	return nil
}

func lookupUID(owner string) (int, error) {
	if id, err := strconv.Atoi(owner); err == nil {
		return id, nil
	}

	u, err := user.Lookup(owner)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrOwnership, "unknown user %q", owner)
	}
	return strconv.Atoi(u.Uid)
}

func lookupGID(group string) (int, error) {
	if id, err := strconv.Atoi(group); err == nil {
		return id, nil
	}

	g, err := user.LookupGroup(group)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrOwnership, "unknown group %q", group)
	}
	return strconv.Atoi(g.Gid)
}
