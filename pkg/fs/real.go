package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"golang.org/x/sys/unix"
)

// Real implements [FS] using the real filesystem.
//
// Most methods are pure passthroughs to the [os] package with identical
// behavior and error semantics. The exceptions are [Real.Exists] which wraps
// [os.Stat], [Real.Access] which calls access(2), [Real.Abs] which resolves
// symlinks, and [Real.WriteFileAtomic] which replaces files via rename.
type Real struct{}

// NewReal returns a new [Real] filesystem.
func NewReal() *Real {
	return &Real{}
}

// --- File Operations ---

// A passthrough wrapper for [os.Open].
func (r *Real) Open(path string) (File, error) {
	return os.Open(path)
}

// A passthrough wrapper for [os.Create].
func (r *Real) Create(path string) (File, error) {
	return os.Create(path)
}

// A passthrough wrapper for [os.OpenFile].
func (r *Real) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(path, flag, perm)
}

// A passthrough wrapper for [os.ReadFile].
func (r *Real) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile is a passthrough wrapper for [os.WriteFile].
func (r *Real) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// processUmask is the umask at startup. umask(2) can only be read by
// setting it, so it is read once during package initialization.
var processUmask = func() os.FileMode {
	old := unix.Umask(0)
	unix.Umask(old)

	return os.FileMode(old)
}()

// WriteFileAtomic writes r to a temp file next to path and renames it into
// place. A file that did not exist before gets perm masked by the process
// umask, like [os.WriteFile]; an existing file keeps its mode.
func (r *Real) WriteFileAtomic(path string, reader io.Reader, perm os.FileMode) error {
	_, statErr := os.Stat(path)
	existed := statErr == nil

	err := atomic.WriteFile(path, reader)
	if err != nil {
		return err
	}

	if existed {
		return nil
	}

	err = os.Chmod(path, perm&^processUmask)
	if err != nil {
		return fmt.Errorf("chmod %q: %w", path, err)
	}

	return nil
}

// --- Directory Operations ---

// A passthrough wrapper for [os.ReadDir].
func (r *Real) ReadDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

// A passthrough wrapper for [os.Mkdir].
func (r *Real) Mkdir(path string, perm os.FileMode) error {
	return os.Mkdir(path, perm)
}

// A passthrough wrapper for [os.MkdirAll].
func (r *Real) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// --- Metadata ---

// A passthrough wrapper for [os.Stat].
func (r *Real) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// A passthrough wrapper for [os.Lstat].
func (r *Real) Lstat(path string) (os.FileInfo, error) {
	return os.Lstat(path)
}

// Exists checks if a file exists using [os.Stat].
// Returns (true, nil) if the file exists, (false, nil) if it does not,
// or (false, err) for other errors.
func (r *Real) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// Access calls access(2) with the effective permission bits for mode.
// The returned error is an [*os.PathError] wrapping the errno.
func (r *Real) Access(path string, mode AccessMode) error {
	var how uint32
	if mode&AccessRead != 0 {
		how |= unix.R_OK
	}

	if mode&AccessWrite != 0 {
		how |= unix.W_OK
	}

	if mode&AccessExec != 0 {
		how |= unix.X_OK
	}

	err := unix.Access(path, how)
	if err != nil {
		return &os.PathError{Op: "access", Path: path, Err: err}
	}

	return nil
}

// A passthrough wrapper for [os.Chmod].
func (r *Real) Chmod(path string, mode os.FileMode) error {
	return os.Chmod(path, mode)
}

// A passthrough wrapper for [os.Chtimes].
func (r *Real) Chtimes(path string, atime, mtime time.Time) error {
	return os.Chtimes(path, atime, mtime)
}

// Abs returns the canonical absolute path with every symlink resolved.
// The path must exist.
func (r *Real) Abs(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return "", err
		}

		return "", &os.PathError{Op: "abs", Path: path, Err: err}
	}

	return resolved, nil
}

// --- Mutations ---

// A passthrough wrapper for [os.Remove].
func (r *Real) Remove(path string) error {
	return os.Remove(path)
}

// A passthrough wrapper for [os.RemoveAll].
func (r *Real) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// A passthrough wrapper for [os.Rename].
func (r *Real) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

// Compile-time interface checks.
var (
	_ FS               = (*Real)(nil)
	_ AtomicFileWriter = (*Real)(nil)
)
