// Package fragment implements the idempotent file writer every
// reconciler is built on: serialize the desired content to scratch,
// compare digests, and replace the target only when they differ.
package fragment

import (
	"io/fs"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/confrag/confrag/pkg/checksum"
	"github.com/confrag/confrag/pkg/errors"
	"github.com/confrag/confrag/pkg/logging"
	"github.com/confrag/confrag/pkg/paths"
	"github.com/confrag/confrag/pkg/types"
)

const (
	scratchDirMode  fs.FileMode = 0750
	fragmentDirMode fs.FileMode = 0755
	fragmentMode    fs.FileMode = 0644
)

// Writer reconciles desired content against on-disk fragments.
// Scratch space is private to one invocation; Close removes it.
type Writer struct {
	fs      types.FS
	scratch string
	logger  zerolog.Logger
}

// New creates a fragment writer with a fresh scratch directory for
// the given component name.
func New(fsys types.FS, component string) (*Writer, error) {
	scratch := paths.ScratchDir(component)
	if err := fsys.MkdirAll(scratch, scratchDirMode); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "could not create scratch directory %q", scratch)
	}

	return &Writer{
		fs:      fsys,
		scratch: scratch,
		logger:  logging.GetLogger("fragment.writer"),
	}, nil
}

// Close removes the scratch directory
func (w *Writer) Close() error {
	if err := w.fs.RemoveAll(w.scratch); err != nil {
		return errors.Wrapf(err, errors.ErrFileRemove, "could not remove scratch directory %q", w.scratch)
	}
	return nil
}

// Reconcile writes content to target if and only if the digests
// differ. The replacement is a rename of a sibling temp file, so a
// concurrent reader observes either the old or the new content in
// full, never a truncated file. Returns whether the target changed.
func (w *Writer) Reconcile(target string, content []byte) (bool, error) {
	w.removeSidecar(target)

	scratchFile := filepath.Join(w.scratch, uuid.NewString())
	if err := w.fs.WriteFile(scratchFile, content, fragmentMode); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileWrite, "could not write scratch file for %q", target)
	}

	newDigest, _, err := checksum.FromFile(w.fs, scratchFile)
	if err != nil {
		return false, err
	}
	oldDigest, found, err := checksum.FromFile(w.fs, target)
	if err != nil {
		return false, err
	}

	if found && newDigest == oldDigest {
		if err := w.fs.Remove(scratchFile); err != nil {
			w.logger.Warn().Err(err).Str("path", scratchFile).Msg("could not discard scratch file")
		}
		return false, nil
	}

	if err := w.fs.MkdirAll(filepath.Dir(target), fragmentDirMode); err != nil {
		return false, errors.Wrapf(err, errors.ErrDirCreate, "could not create directory for %q", target)
	}

	// Rename across filesystems is not guaranteed, so the candidate
	// moves next to the target before the final rename.
	sibling := filepath.Join(filepath.Dir(target), "."+filepath.Base(target)+".confrag-"+uuid.NewString()[:8])
	if err := w.fs.WriteFile(sibling, content, fragmentMode); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileWrite, "could not write candidate for %q", target)
	}
	if err := w.fs.Rename(sibling, target); err != nil {
		_ = w.fs.Remove(sibling)
		return false, errors.Wrapf(err, errors.ErrFileWrite, "could not replace %q", target)
	}
	if err := w.fs.Remove(scratchFile); err != nil {
		w.logger.Warn().Err(err).Str("path", scratchFile).Msg("could not discard scratch file")
	}

	w.logger.Debug().Str("target", target).Bool("existed", found).Msg("fragment written")
	return true, nil
}

// Remove deletes the target fragment if it exists. Returns whether a
// file was actually removed.
func (w *Writer) Remove(target string) (bool, error) {
	w.removeSidecar(target)

	if _, err := w.fs.Stat(target); err != nil {
		return false, nil
	}

	if err := w.fs.Remove(target); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileRemove, "could not remove %q", target)
	}

	w.logger.Debug().Str("target", target).Msg("fragment removed")
	return true, nil
}

// removeSidecar drops a leftover checksum sidecar from older tooling
func (w *Writer) removeSidecar(target string) {
	sidecar := paths.ChecksumSidecar(target)
	if _, err := w.fs.Stat(sidecar); err == nil {
		if err := w.fs.Remove(sidecar); err != nil {
			w.logger.Warn().Err(err).Str("path", sidecar).Msg("could not remove stale checksum sidecar")
		}
	}
}
