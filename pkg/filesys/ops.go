package filesys

import (
	"errors"
	"os"
	"strings"
	"time"
)

// Rename moves f to dst and returns dst.
func (f File) Rename(dst File) (File, error) {
	if err := f.fs().Rename(f.path, dst.path); err != nil {
		return f, &Error{Kind: KindRename, Path: f.path, Dest: dst.path, Err: err}
	}

	f.system().log.Debug("rename", "path", f.path, "dest", dst.path)

	return dst, nil
}

// Mkdir creates f and any missing parents with the System's directory mode.
func (f File) Mkdir() (File, error) {
	return f.MkdirMode(f.system().dirMode)
}

// MkdirMode creates f and any missing parents with mode. An existing
// directory is left alone; an existing non-directory fails with
// [ErrMakeDirectory].
func (f File) MkdirMode(mode os.FileMode) (File, error) {
	fsys := f.fs()

	info, err := fsys.Stat(f.path)
	if err == nil {
		if info.IsDir() {
			return f, nil
		}

		return f, &Error{Kind: KindMakeDirectory, Path: f.path, Msg: "exists and is not a directory"}
	}

	if !errors.Is(err, os.ErrNotExist) {
		return f, &Error{Kind: KindMakeDirectory, Path: f.path, Err: err}
	}

	parent := f.Parent()
	if parent.path != f.path && !parent.Exists() {
		if _, err := parent.MkdirMode(mode); err != nil {
			return f, err
		}
	}

	if err := fsys.Mkdir(f.path, mode); err != nil {
		// Lost a race against another creator.
		if errors.Is(err, os.ErrExist) && f.IsDir() {
			return f, nil
		}

		return f, &Error{Kind: KindMakeDirectory, Path: f.path, Err: err}
	}

	f.system().log.Debug("mkdir", "path", f.path, "mode", mode)

	return f, nil
}

// Mkfile creates the parent directory when needed and writes contents.
func (f File) Mkfile(contents string) (File, error) {
	return f.MkfileMode(contents, f.system().dirMode)
}

// MkfileMode is [File.Mkfile] with dirMode for the created parents.
func (f File) MkfileMode(contents string, dirMode os.FileMode) (File, error) {
	if _, err := f.Parent().MkdirMode(dirMode); err != nil {
		return f, err
	}

	if err := f.write(strings.NewReader(contents), os.O_TRUNC); err != nil {
		return f, &Error{Kind: KindMakeFile, Path: f.path, Err: err}
	}

	return f, nil
}

// Delete removes a file or an empty directory. A missing path is not an
// error.
func (f File) Delete() (File, error) {
	fsys := f.fs()

	if _, err := fsys.Lstat(f.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}

		return f, &Error{Kind: KindDelete, Path: f.path, Err: err}
	}

	if err := fsys.Remove(f.path); err != nil {
		return f, &Error{Kind: KindDelete, Path: f.path, Err: err}
	}

	f.system().log.Debug("delete", "path", f.path)

	return f, nil
}

// DeleteAll removes f and, for a directory, everything below it.
//
// Symlinks are removed, never followed. Removal continues past failures;
// every failure is logged and the returned error joins all of them.
func (f File) DeleteAll() (File, error) {
	info, err := f.fs().Lstat(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}

		return f, &Error{Kind: KindDelete, Path: f.path, Err: err}
	}

	if !info.IsDir() {
		return f.Delete()
	}

	errs := f.deleteTree()
	if len(errs) > 0 {
		return f, errors.Join(errs...)
	}

	f.system().log.Debug("delete", "path", f.path, "recursive", true)

	return f, nil
}

// deleteTree removes files first, then subdirectories, then f itself.
func (f File) deleteTree() []error {
	fsys := f.fs()
	log := f.system().log

	var errs []error

	fail := func(path string, err error) {
		log.Warn("delete failed", "path", path, "error", err)
		errs = append(errs, &Error{Kind: KindDelete, Path: path, Err: err})
	}

	entries, err := fsys.ReadDir(f.path)
	if err != nil {
		fail(f.path, err)

		return errs
	}

	var dirs []File

	for _, entry := range entries {
		child := f.Child(entry.Name())

		if entry.IsDir() {
			dirs = append(dirs, child)

			continue
		}

		if err := fsys.Remove(child.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			fail(child.path, err)
		}
	}

	for _, dir := range dirs {
		errs = append(errs, dir.deleteTree()...)
	}

	if err := fsys.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		fail(f.path, err)
	}

	return errs
}

// Filter selects entries in [File.ListFiles].
type Filter interface {
	Accept(f File) bool
}

// FilterFunc adapts a function to [Filter].
type FilterFunc func(f File) bool

func (fn FilterFunc) Accept(f File) bool { return fn(f) }

// ListFiles returns the entries of directory f accepted by filter, in
// backend order. A nil filter accepts everything.
func (f File) ListFiles(filter Filter) ([]File, error) {
	fsys := f.fs()

	info, err := fsys.Stat(f.path)
	if err != nil {
		return nil, statError(KindInput, f.path, err)
	}

	if !info.IsDir() {
		return nil, &Error{Kind: KindNotDirectory, Path: f.path}
	}

	entries, err := fsys.ReadDir(f.path)
	if err != nil {
		return nil, statError(KindInput, f.path, err)
	}

	files := make([]File, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if name == "." || name == ".." {
			continue
		}

		child := f.Child(name)
		if filter != nil && !filter.Accept(child) {
			continue
		}

		files = append(files, child)
	}

	return files, nil
}

// ListFilesFunc is [File.ListFiles] with a function filter.
func (f File) ListFilesFunc(accept func(File) bool) ([]File, error) {
	if accept == nil {
		return f.ListFiles(nil)
	}

	return f.ListFiles(FilterFunc(accept))
}

// Touch sets the access and modification times to now, creating an empty
// file when missing.
func (f File) Touch() (File, error) {
	return f.TouchAt(time.Now())
}

// TouchAt is [File.Touch] with an explicit time.
func (f File) TouchAt(t time.Time) (File, error) {
	fsys := f.fs()

	exists, err := fsys.Exists(f.path)
	if err != nil {
		return f, &Error{Kind: KindOutput, Path: f.path, Err: err}
	}

	if !exists {
		h, err := fsys.OpenFile(f.path, os.O_WRONLY|os.O_CREATE, f.system().fileMode)
		if err != nil {
			return f, &Error{Kind: KindOutput, Path: f.path, Err: err}
		}

		if err := h.Close(); err != nil {
			return f, &Error{Kind: KindOutput, Path: f.path, Err: err}
		}
	}

	if err := fsys.Chtimes(f.path, t, t); err != nil {
		return f, &Error{Kind: KindOutput, Path: f.path, Msg: "set times", Err: err}
	}

	return f, nil
}
