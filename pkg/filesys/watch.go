package filesys

import (
	"context"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/calvinalkan/filesys/pkg/fs"
)

// Op is a set of changes reported by [File.Watch].
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

// Has reports whether op contains all of other.
func (op Op) Has(other Op) bool { return op&other == other }

func (op Op) String() string {
	names := []struct {
		op   Op
		name string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpChmod, "CHMOD"},
	}

	var parts []string

	for _, n := range names {
		if op.Has(n.op) {
			parts = append(parts, n.name)
		}
	}

	if len(parts) == 0 {
		return "NONE"
	}

	return strings.Join(parts, "|")
}

// Event is one change under a watched path.
type Event struct {
	File File
	Op   Op
}

// Watch calls fn for every change to f, or to the entries of f when it is a
// directory, until ctx is done. Only the real filesystem can be watched.
func (f File) Watch(ctx context.Context, fn func(Event)) error {
	if _, ok := f.fs().(*fs.Real); !ok {
		return &Error{Kind: KindInput, Path: f.path, Msg: "watch", Err: ErrUnsupported}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return &Error{Kind: KindInput, Path: f.path, Msg: "watch", Err: err}
	}
	defer w.Close()

	if err := w.Add(f.path); err != nil {
		return statError(KindInput, f.path, err)
	}

	sys := f.system()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			fn(Event{File: sys.File(ev.Name), Op: opFromNotify(ev.Op)})
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			return &Error{Kind: KindInput, Path: f.path, Msg: "watch", Err: err}
		}
	}
}

func opFromNotify(in fsnotify.Op) Op {
	var op Op

	if in.Has(fsnotify.Create) {
		op |= OpCreate
	}

	if in.Has(fsnotify.Write) {
		op |= OpWrite
	}

	if in.Has(fsnotify.Remove) {
		op |= OpRemove
	}

	if in.Has(fsnotify.Rename) {
		op |= OpRename
	}

	if in.Has(fsnotify.Chmod) {
		op |= OpChmod
	}

	return op
}
