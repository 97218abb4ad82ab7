package filesys

import (
	"os"
	"strings"
	"time"

	"github.com/calvinalkan/filesys/pkg/fs"
)

// File is a path on a [System]'s backend.
//
// A File holds no resources and is never mutated, so it can be copied and
// shared freely. Two Files refer to the same entry when their Path values
// are equal. Methods that change the filesystem return the File they act on
// (or the new one, for Rename) so calls can be chained.
//
// The zero File uses [Default].
type File struct {
	path string
	sys  *System
}

// NewFile returns path as a File on the [Default] system.
func NewFile(path string) File {
	return Default().File(path)
}

func (f File) system() *System {
	if f.sys == nil {
		return Default()
	}

	return f.sys
}

func (f File) fs() fs.FS { return f.system().fs }

// System returns the System f was created from.
func (f File) System() *System { return f.system() }

// Path returns the path as given at construction.
func (f File) Path() string { return f.path }

func (f File) String() string { return f.path }

// Name returns the last element of the path.
func (f File) Name() string {
	sep := f.system().sep

	p := strings.TrimRight(f.path, sep)
	if i := strings.LastIndex(p, sep); i >= 0 {
		p = p[i+len(sep):]
	}

	return p
}

// NameWithoutSuffix returns [File.Name] with suffix removed. The suffix is
// kept when it is the whole name.
func (f File) NameWithoutSuffix(suffix string) string {
	name := f.Name()
	if suffix != "" && len(name) > len(suffix) && strings.HasSuffix(name, suffix) {
		return name[:len(name)-len(suffix)]
	}

	return name
}

// DirName returns the path without its last element: "." when there is no
// directory part, the separator for entries at the root.
func (f File) DirName() string {
	sep := f.system().sep

	p := strings.TrimRight(f.path, sep)
	if p == "" {
		if f.path != "" {
			return sep
		}

		return "."
	}

	i := strings.LastIndex(p, sep)
	if i < 0 {
		return "."
	}

	dir := strings.TrimRight(p[:i], sep)
	if dir == "" {
		return sep
	}

	return dir
}

// Extension returns the text after the last dot of the name, or "".
func (f File) Extension() string {
	name := f.Name()

	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}

	return name[i+1:]
}

// Child returns the entry called name inside f. It need not exist.
func (f File) Child(name string) File {
	return f.system().FileIn(f, name)
}

// Parent returns the directory containing f.
func (f File) Parent() File {
	return f.system().File(f.DirName())
}

// Exists reports whether the path exists. Any failure counts as absent.
func (f File) Exists() bool {
	ok, err := f.fs().Exists(f.path)

	return err == nil && ok
}

// IsFile reports whether the path is a regular file, following symlinks.
func (f File) IsFile() bool {
	info, err := f.fs().Stat(f.path)

	return err == nil && info.Mode().IsRegular()
}

// IsDir reports whether the path is a directory, following symlinks.
func (f File) IsDir() bool {
	info, err := f.fs().Stat(f.path)

	return err == nil && info.IsDir()
}

// IsDirectory is an alias for [File.IsDir].
func (f File) IsDirectory() bool { return f.IsDir() }

// CanRead reports whether the process may read the path.
func (f File) CanRead() bool {
	return f.fs().Access(f.path, fs.AccessRead) == nil
}

// IsReadable is an alias for [File.CanRead].
func (f File) IsReadable() bool { return f.CanRead() }

// CanWrite reports whether the process may write the path.
func (f File) CanWrite() bool {
	return f.fs().Access(f.path, fs.AccessWrite) == nil
}

// IsWritable is an alias for [File.CanWrite].
func (f File) IsWritable() bool { return f.CanWrite() }

func (f File) stat() (os.FileInfo, error) {
	info, err := f.fs().Stat(f.path)
	if err != nil {
		return nil, statError(KindInput, f.path, err)
	}

	return info, nil
}

// Size returns the size in bytes.
func (f File) Size() (int64, error) {
	info, err := f.stat()
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}

// Perms returns the mode, permission and type bits.
func (f File) Perms() (os.FileMode, error) {
	info, err := f.stat()
	if err != nil {
		return 0, err
	}

	return info.Mode(), nil
}

// File types reported by [File.Type].
const (
	TypeFile    = "file"
	TypeDir     = "dir"
	TypeLink    = "link"
	TypeFifo    = "fifo"
	TypeChar    = "char"
	TypeBlock   = "block"
	TypeSocket  = "socket"
	TypeUnknown = "unknown"
)

// Type returns the kind of entry without following a final symlink.
func (f File) Type() (string, error) {
	info, err := f.fs().Lstat(f.path)
	if err != nil {
		return "", statError(KindInput, f.path, err)
	}

	mode := info.Mode()

	switch {
	case mode.IsRegular():
		return TypeFile, nil
	case mode.IsDir():
		return TypeDir, nil
	case mode&os.ModeSymlink != 0:
		return TypeLink, nil
	case mode&os.ModeNamedPipe != 0:
		return TypeFifo, nil
	case mode&os.ModeCharDevice != 0:
		return TypeChar, nil
	case mode&os.ModeDevice != 0:
		return TypeBlock, nil
	case mode&os.ModeSocket != 0:
		return TypeSocket, nil
	default:
		return TypeUnknown, nil
	}
}

// ModTime returns the last modification time.
func (f File) ModTime() (time.Time, error) {
	info, err := f.stat()
	if err != nil {
		return time.Time{}, err
	}

	return info.ModTime(), nil
}

// AccessTime returns the last access time. Backends that do not record it
// report the modification time.
func (f File) AccessTime() (time.Time, error) {
	info, err := f.stat()
	if err != nil {
		return time.Time{}, err
	}

	if atime, ok := accessTime(info); ok {
		return atime, nil
	}

	return info.ModTime(), nil
}

// Owner returns the numeric user id owning the path.
func (f File) Owner() (int, error) {
	info, err := f.stat()
	if err != nil {
		return 0, err
	}

	uid, ok := owner(info)
	if !ok {
		return 0, &Error{Kind: KindInput, Path: f.path, Msg: "owner", Err: ErrUnsupported}
	}

	return uid, nil
}

// AbsolutePath returns the canonical absolute path. On the real filesystem
// symlinks are resolved and the path must exist.
func (f File) AbsolutePath() (string, error) {
	abs, err := f.fs().Abs(f.path)
	if err != nil {
		return "", statError(KindInput, f.path, err)
	}

	return abs, nil
}
