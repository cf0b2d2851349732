package confrag

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/confrag/confrag/pkg/errors"
)

// readManifest decodes one YAML manifest file into out
func readManifest(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "could not read manifest %q", path)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "could not parse manifest %q", path)
	}
	return nil
}
