// Package fs provides the filesystem backends used by package filesys.
//
// The main types are:
//   - [FS]: interface for filesystem operations
//   - [File]: interface for open files (satisfied by [os.File])
//   - [Real]: production implementation using [os] and [golang.org/x/sys/unix]
//   - [Billy]: adapter over a go-billy filesystem (in-memory for tests)
//   - [Chaos]: testing implementation that injects failures
//
// Example usage:
//
//	fsys := fs.NewReal()
//	f, err := fsys.Open("config.json")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	// Works with all stdlib io functions:
//	data, _ := io.ReadAll(f)
package fs

import (
	"errors"
	"io"
	"os"
	"time"
)

// ErrUnsupported is returned by backends that cannot perform an operation,
// for example changing timestamps on an in-memory filesystem.
var ErrUnsupported = errors.New("operation not supported by backend")

// File represents an open file handle.
//
// This interface is satisfied by [os.File] and can be used with all
// standard library functions that accept [io.Reader], [io.Writer],
// [io.Seeker], or [io.Closer].
//
// [File.Fd] returns a valid OS file descriptor for OS-backed files. Handles
// that have no descriptor return [InvalidFd] and should implement [Flocker]
// so [Flock] can still lock them.
//
// Note: [File] includes [io.Writer] even for read-only handles. Like [os.File],
// implementations return an error from Write when the file wasn't opened
// for writing.
type File interface {
	io.ReadWriteCloser
	io.Seeker

	// Fd returns the file descriptor. See [os.File.Fd].
	Fd() uintptr

	// Stat returns the [os.FileInfo] for this file. See [os.File.Stat].
	Stat() (os.FileInfo, error)

	// Sync commits the file's contents to disk. See [os.File.Sync].
	Sync() error

	// Chmod changes the mode of the file. See [os.File.Chmod].
	Chmod(mode os.FileMode) error

	// Truncate changes the size of the file. See [os.File.Truncate].
	Truncate(size int64) error
}

// InvalidFd is returned by [File.Fd] for handles without an OS descriptor.
const InvalidFd = ^uintptr(0)

// AccessMode selects the permission checked by [FS.Access].
type AccessMode uint32

const (
	AccessRead AccessMode = 1 << iota
	AccessWrite
	AccessExec
)

// FS defines filesystem operations for reading, writing, and managing files.
//
// All methods mirror their [os] package equivalents. Paths use OS semantics
// (like the os package and path/filepath), not the slash-separated paths used
// by the standard library io/fs package.
type FS interface {
	// Open opens a file for reading. See [os.Open].
	Open(path string) (File, error)

	// Create creates or truncates a file for writing. See [os.Create].
	Create(path string) (File, error)

	// OpenFile opens a file with specified flags and permissions. See [os.OpenFile].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it if necessary. See [os.WriteFile].
	// Not atomic; see [AtomicWriter] for replace-by-rename writes.
	WriteFile(path string, data []byte, perm os.FileMode) error

	// ReadDir reads a directory and returns its entries. See [os.ReadDir].
	ReadDir(path string) ([]os.DirEntry, error)

	// Mkdir creates a single directory. See [os.Mkdir].
	// Fails if the parent does not exist or the path already exists.
	Mkdir(path string, perm os.FileMode) error

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info, following symlinks. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Lstat returns file info without following a final symlink. See [os.Lstat].
	Lstat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)

	// Access checks whether the calling process may access path with mode.
	// Returns nil when access is allowed.
	Access(path string, mode AccessMode) error

	// Chmod changes the mode of path. See [os.Chmod].
	Chmod(path string, mode os.FileMode) error

	// Chtimes changes the access and modification times. See [os.Chtimes].
	Chtimes(path string, atime, mtime time.Time) error

	// Remove deletes a file or empty directory. See [os.Remove].
	Remove(path string) error

	// RemoveAll deletes a path and any children. See [os.RemoveAll].
	RemoveAll(path string) error

	// Rename moves/renames a file or directory. See [os.Rename].
	Rename(oldpath, newpath string) error

	// Abs returns an absolute, clean form of path with symlinks resolved
	// where the backend supports them.
	Abs(path string) (string, error)
}

// AtomicFileWriter is implemented by backends that provide their own
// replace-by-rename write. [WriteFileAtomic] prefers it over [AtomicWriter].
type AtomicFileWriter interface {
	WriteFileAtomic(path string, r io.Reader, perm os.FileMode) error
}

// WriteFileAtomic replaces path with the content of r so readers observe
// either the old or the new file. perm is masked by the process umask, as
// for [os.WriteFile].
func WriteFileAtomic(fsys FS, path string, r io.Reader, perm os.FileMode) error {
	if aw, ok := fsys.(AtomicFileWriter); ok {
		return aw.WriteFileAtomic(path, r, perm)
	}

	opts := AtomicWriteOptions{SyncDir: true, Perm: perm &^ processUmask}

	return NewAtomicWriter(fsys).Write(path, r, opts)
}

// Compile-time interface checks.
var _ File = (*os.File)(nil)
