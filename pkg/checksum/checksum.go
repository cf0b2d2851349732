package checksum

import (
	"crypto/sha256"
	stderrors "errors"
	"fmt"
	"io/fs"

	"github.com/confrag/confrag/pkg/errors"
	"github.com/confrag/confrag/pkg/types"
)

// FromBytes calculates the SHA256 checksum of a byte buffer
func FromBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("sha256:%x", hash)
}

// FromFile calculates the SHA256 checksum of a file.
// A missing file is not an error: it returns found=false, which callers
// treat as the first-write state.
func FromFile(fsys types.FS, path string) (digest string, found bool, err error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, errors.Wrapf(err, errors.ErrFileAccess, "could not read %q for hashing", path)
	}
	return FromBytes(data), true, nil
}

// FromString calculates the SHA256 checksum of a string. Used to derive
// stable cache keys from file locations.
func FromString(s string) string {
	hash := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", hash)
}
