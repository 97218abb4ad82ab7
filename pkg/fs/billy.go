package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"golang.org/x/sys/unix"
)

// Billy implements [FS] on top of a go-billy filesystem.
//
// go-billy's in-memory backend is looser than the OS: it creates missing
// parents on create, lists regular files as empty directories, and renames
// into missing directories. Billy checks those preconditions itself so
// callers see os-like errors regardless of the wrapped filesystem.
//
// Operations are serialized with a mutex because memfs is not safe for
// concurrent use.
type Billy struct {
	mu  sync.Mutex
	bfs billy.Filesystem
}

// NewBilly wraps bfs. Panics if bfs is nil.
func NewBilly(bfs billy.Filesystem) *Billy {
	if bfs == nil {
		panic("billy filesystem is nil")
	}

	return &Billy{bfs: bfs}
}

// NewMemory returns an empty in-memory filesystem rooted at "/".
func NewMemory() *Billy {
	return NewBilly(memfs.New())
}

// NewBillyOS returns a go-billy OS filesystem rooted at dir.
func NewBillyOS(dir string) *Billy {
	return NewBilly(osfs.New(dir))
}

// Unwrap returns the underlying billy.Filesystem.
func (b *Billy) Unwrap() billy.Filesystem {
	return b.bfs
}

func normalize(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

// --- File Operations ---

func (b *Billy) Open(path string) (File, error) {
	return b.OpenFile(path, os.O_RDONLY, 0)
}

func (b *Billy) Create(path string) (File, error) {
	return b.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
}

// OpenFile opens path with os-like semantics: creating a file requires its
// parent directory to exist.
func (b *Billy) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.openFile(path, flag, perm)
}

func (b *Billy) openFile(path string, flag int, perm os.FileMode) (File, error) {
	name := normalize(path)

	info, err := b.bfs.Stat(name)
	switch {
	case err == nil && info.IsDir():
		if flag&(os.O_WRONLY|os.O_RDWR) != 0 {
			return nil, &os.PathError{Op: "open", Path: path, Err: syscall.EISDIR}
		}
	case err != nil && isNotExist(err):
		if flag&os.O_CREATE == 0 {
			return nil, &os.PathError{Op: "open", Path: path, Err: syscall.ENOENT}
		}

		if perr := b.requireDir(filepath.Dir(name), "open", path); perr != nil {
			return nil, perr
		}
	case err != nil:
		return nil, err
	}

	f, err := b.bfs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}

	return &billyFile{file: b.bfs, f: f, name: name, mu: &b.mu}, nil
}

func (b *Billy) ReadFile(path string) ([]byte, error) {
	f, err := b.Open(path)
	if err != nil {
		return nil, err
	}

	defer func() { _ = f.Close() }()

	return io.ReadAll(f)
}

func (b *Billy) WriteFile(path string, data []byte, perm os.FileMode) error {
	f, err := b.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	_, err = f.Write(data)
	closeErr := f.Close()

	return errors.Join(err, closeErr)
}

// WriteFileAtomic writes through [AtomicWriter] without the directory sync,
// which go-billy cannot express.
func (b *Billy) WriteFileAtomic(path string, r io.Reader, perm os.FileMode) error {
	return NewAtomicWriter(b).Write(path, r, AtomicWriteOptions{Perm: perm})
}

// --- Directory Operations ---

func (b *Billy) ReadDir(path string) ([]os.DirEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	name := normalize(path)

	if err := b.requireDir(name, "readdirent", path); err != nil {
		return nil, err
	}

	infos, err := b.bfs.ReadDir(name)
	if err != nil {
		return nil, err
	}

	entries := make([]os.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = &dirEntry{info: info}
	}

	return entries, nil
}

// Mkdir creates a single directory. Unlike go-billy's MkdirAll it fails if
// the directory exists or its parent is missing.
func (b *Billy) Mkdir(path string, perm os.FileMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	name := normalize(path)

	if _, err := b.bfs.Lstat(name); err == nil {
		return &os.PathError{Op: "mkdir", Path: path, Err: syscall.EEXIST}
	}

	if err := b.requireDir(filepath.Dir(name), "mkdir", path); err != nil {
		return err
	}

	return b.bfs.MkdirAll(name, perm)
}

func (b *Billy) MkdirAll(path string, perm os.FileMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.bfs.MkdirAll(normalize(path), perm)
	if err != nil {
		return &os.PathError{Op: "mkdir", Path: path, Err: err}
	}

	return nil
}

// --- Metadata ---

func (b *Billy) Stat(path string) (os.FileInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.stat(path)
}

func (b *Billy) stat(path string) (os.FileInfo, error) {
	info, err := b.bfs.Stat(normalize(path))
	if err != nil {
		if isNotExist(err) {
			return nil, &os.PathError{Op: "stat", Path: path, Err: syscall.ENOENT}
		}

		return nil, err
	}

	return info, nil
}

func (b *Billy) Lstat(path string) (os.FileInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	info, err := b.bfs.Lstat(normalize(path))
	if err != nil {
		if isNotExist(err) {
			return nil, &os.PathError{Op: "lstat", Path: path, Err: syscall.ENOENT}
		}

		return nil, err
	}

	return info, nil
}

func (b *Billy) Exists(path string) (bool, error) {
	_, err := b.Stat(path)
	if err == nil {
		return true, nil
	}

	if isNotExist(err) {
		return false, nil
	}

	return false, err
}

// Access checks the owner permission bits, since go-billy has no notion of
// the calling user.
func (b *Billy) Access(path string, mode AccessMode) error {
	info, err := b.Stat(path)
	if err != nil {
		return err
	}

	perm := info.Mode().Perm()

	var want os.FileMode
	if mode&AccessRead != 0 {
		want |= 0o400
	}

	if mode&AccessWrite != 0 {
		want |= 0o200
	}

	if mode&AccessExec != 0 {
		want |= 0o100
	}

	if perm&want != want {
		return &os.PathError{Op: "access", Path: path, Err: syscall.EACCES}
	}

	return nil
}

// Chmod returns [ErrUnsupported] unless the wrapped filesystem implements
// billy.Change.
func (b *Billy) Chmod(path string, mode os.FileMode) error {
	ch, ok := b.bfs.(billy.Change)
	if !ok {
		return &os.PathError{Op: "chmod", Path: path, Err: ErrUnsupported}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return ch.Chmod(normalize(path), mode)
}

// Chtimes returns [ErrUnsupported] unless the wrapped filesystem implements
// billy.Change.
func (b *Billy) Chtimes(path string, atime, mtime time.Time) error {
	ch, ok := b.bfs.(billy.Change)
	if !ok {
		return &os.PathError{Op: "chtimes", Path: path, Err: ErrUnsupported}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return ch.Chtimes(normalize(path), atime, mtime)
}

// Abs returns path rooted at the filesystem root. The path must exist.
func (b *Billy) Abs(path string) (string, error) {
	if _, err := b.Stat(path); err != nil {
		return "", err
	}

	name := normalize(path)
	if !filepath.IsAbs(name) {
		name = "/" + name
	}

	return filepath.Clean(name), nil
}

// --- Mutations ---

func (b *Billy) Remove(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	name := normalize(path)

	if _, err := b.bfs.Lstat(name); err != nil {
		return &os.PathError{Op: "remove", Path: path, Err: syscall.ENOENT}
	}

	err := b.bfs.Remove(name)
	if err != nil {
		return &os.PathError{Op: "remove", Path: path, Err: err}
	}

	return nil
}

func (b *Billy) RemoveAll(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return util.RemoveAll(b.bfs, normalize(path))
}

func (b *Billy) Rename(oldpath, newpath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	from, to := normalize(oldpath), normalize(newpath)

	if _, err := b.bfs.Lstat(from); err != nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.ENOENT}
	}

	if err := b.requireDir(filepath.Dir(to), "rename", newpath); err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: pathErr.Err}
		}

		return err
	}

	return b.bfs.Rename(from, to)
}

// requireDir reports ENOENT or ENOTDIR for dir the way the kernel would for
// an operation on a path below it.
func (b *Billy) requireDir(dir, op, path string) error {
	if dir == "." || dir == "/" {
		return nil
	}

	info, err := b.bfs.Stat(dir)
	if err != nil {
		return &os.PathError{Op: op, Path: path, Err: syscall.ENOENT}
	}

	if !info.IsDir() {
		return &os.PathError{Op: op, Path: path, Err: syscall.ENOTDIR}
	}

	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

// dirEntry wraps os.FileInfo to implement os.DirEntry.
type dirEntry struct {
	info os.FileInfo
}

func (d *dirEntry) Name() string               { return d.info.Name() }
func (d *dirEntry) IsDir() bool                { return d.info.IsDir() }
func (d *dirEntry) Type() os.FileMode          { return d.info.Mode().Type() }
func (d *dirEntry) Info() (os.FileInfo, error) { return d.info, nil }

// billyFile adapts billy.File to [File].
type billyFile struct {
	file billy.Basic
	f    billy.File
	name string
	mu   *sync.Mutex
}

func (f *billyFile) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.f.Read(p)
}

func (f *billyFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.f.Write(p)
}

func (f *billyFile) Seek(offset int64, whence int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.f.Seek(offset, whence)
}

func (f *billyFile) Close() error {
	return f.f.Close()
}

// Fd returns the descriptor of OS-backed billy files and [InvalidFd]
// otherwise.
func (f *billyFile) Fd() uintptr {
	if fd, ok := f.f.(interface{ Fd() uintptr }); ok {
		return fd.Fd()
	}

	return InvalidFd
}

// Stat goes through the filesystem because memfs handles report the open
// flags' permission, not the file's.
func (f *billyFile) Stat() (os.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.file.Stat(f.name)
}

func (f *billyFile) Sync() error {
	if syncer, ok := f.f.(interface{ Sync() error }); ok {
		return syncer.Sync()
	}

	return nil
}

func (f *billyFile) Chmod(mode os.FileMode) error {
	if ch, ok := f.file.(billy.Change); ok {
		return ch.Chmod(f.name, mode)
	}

	return nil
}

func (f *billyFile) Truncate(size int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.f.Truncate(size)
}

// Flock maps flock(2) requests onto the descriptor when there is one, and
// onto billy's own Lock/Unlock otherwise. billy only knows one blocking
// exclusive lock, so shared and non-blocking requests degrade to it.
func (f *billyFile) Flock(how int) error {
	if fd := f.Fd(); fd != InvalidFd {
		return flockRetryEINTR(unix.Flock, int(fd), how)
	}

	if how&unix.LOCK_UN != 0 {
		return f.f.Unlock()
	}

	return f.f.Lock()
}

// Compile-time interface checks.
var (
	_ FS               = (*Billy)(nil)
	_ AtomicFileWriter = (*Billy)(nil)
	_ File             = (*billyFile)(nil)
	_ Flocker          = (*billyFile)(nil)
)
