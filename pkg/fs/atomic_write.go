package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrAtomicWriteDirSync indicates the parent directory could not be synced after rename.
//
// When returned, the new file is in place but durability is not guaranteed.
// Callers can detect this with errors.Is(err, ErrAtomicWriteDirSync).
var ErrAtomicWriteDirSync = errors.New("dir sync")

// AtomicWriter replaces files through a temp file and a rename, on any [FS].
//
// [Real] has its own implementation (see [Real.WriteFileAtomic]); AtomicWriter
// serves the other backends through [WriteFileAtomic].
type AtomicWriter struct {
	fs FS
}

// NewAtomicWriter creates an AtomicWriter that uses the given filesystem.
// Panics if fs is nil.
func NewAtomicWriter(fs FS) *AtomicWriter {
	if fs == nil {
		panic("fs is nil")
	}

	return &AtomicWriter{fs: fs}
}

// AtomicWriteOptions configures [AtomicWriter.Write].
type AtomicWriteOptions struct {
	// SyncDir syncs the parent directory after the rename.
	SyncDir bool

	// Perm is applied to the new file with an explicit chmod, so umask does
	// not affect it. Must be non-zero.
	Perm os.FileMode
}

// Write streams reader into a temp file next to path, syncs it, and renames
// it over path. With opts.SyncDir the parent directory is synced last; a
// failure there satisfies errors.Is(err, ErrAtomicWriteDirSync).
//
// On any failure before the rename the temp file is removed and path is left
// untouched.
func (w *AtomicWriter) Write(path string, reader io.Reader, opts AtomicWriteOptions) error {
	if reader == nil {
		panic("reader is nil")
	}

	if opts.Perm == 0 {
		return errors.New("opts.Perm must be non-zero")
	}

	dir, base := filepath.Split(path)
	if base == "" || base == "." || base == string(os.PathSeparator) {
		return fmt.Errorf("path is invalid: %q", path)
	}

	if dir == "" {
		dir = "."
	}

	dir = filepath.Clean(dir)

	tmp, tmpPath, err := w.createTemp(dir, base, opts.Perm)
	if err != nil {
		return err
	}

	discard := func(cause error) error {
		return errors.Join(cause, closeQuiet(tmpPath, tmp), w.removeTemp(tmpPath))
	}

	if err := tmp.Chmod(opts.Perm); err != nil {
		return discard(fmt.Errorf("chmod temp file %q: %w", tmpPath, err))
	}

	if _, err := io.Copy(tmp, reader); err != nil {
		return discard(fmt.Errorf("write temp file %q: %w", tmpPath, err))
	}

	if err := tmp.Sync(); err != nil {
		return discard(fmt.Errorf("sync temp file %q: %w", tmpPath, err))
	}

	if err := tmp.Close(); err != nil {
		return errors.Join(fmt.Errorf("close temp file %q: %w", tmpPath, err), w.removeTemp(tmpPath))
	}

	if err := w.fs.Rename(tmpPath, path); err != nil {
		return errors.Join(fmt.Errorf("rename: %w", err), w.removeTemp(tmpPath))
	}

	if opts.SyncDir {
		return w.syncDir(dir)
	}

	return nil
}

const atomicWriteMaxAttempts = 16

func (w *AtomicWriter) createTemp(dir, base string, perm os.FileMode) (File, string, error) {
	for range atomicWriteMaxAttempts {
		id, err := uuid.NewRandom()
		if err != nil {
			return nil, "", fmt.Errorf("temp name: %w", err)
		}

		path := filepath.Join(dir, "."+base+".tmp-"+id.String())

		file, err := w.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
		if err == nil {
			return file, path, nil
		}

		if errors.Is(err, os.ErrExist) {
			continue
		}

		return nil, "", fmt.Errorf("create temp file: %w", err)
	}

	return nil, "", fmt.Errorf("exhausted temp file attempts in %q", dir)
}

func (w *AtomicWriter) syncDir(dir string) error {
	d, err := w.fs.Open(dir)
	if err != nil {
		return errors.Join(ErrAtomicWriteDirSync, fmt.Errorf("open dir %q: %w", dir, err))
	}

	syncErr := d.Sync()
	closeErr := d.Close()

	if syncErr != nil {
		return errors.Join(ErrAtomicWriteDirSync, fmt.Errorf("%q: %w", dir, syncErr), closeErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close dir %q: %w", dir, closeErr)
	}

	return nil
}

func (w *AtomicWriter) removeTemp(path string) error {
	err := w.fs.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove temp file %q: %w", path, err)
	}

	return nil
}

func closeQuiet(path string, f File) error {
	err := f.Close()
	if err != nil {
		return fmt.Errorf("close temp file %q: %w", path, err)
	}

	return nil
}
