package filesys

import (
	"errors"
	"io"

	"github.com/calvinalkan/filesys/pkg/fs"
)

// streamBuffer is the buffering layer between an operator and its handle.
type streamBuffer interface {
	// flush writes pending output to the handle.
	flush() error
	// unread reports bytes read from the handle but not yet consumed.
	unread() int
	// reset drops buffered state after the handle position moved.
	reset(h fs.File)
}

// operator holds an open handle and its lock state. It is embedded by
// [Reader] and [Writer], which supply the lock type and the buffer.
//
// Once closed every method except IsEOF and IsClosed fails with
// [ErrOperator].
type operator struct {
	file   File
	h      fs.File
	kind   Kind
	lt     fs.LockType
	buf    streamBuffer
	locked bool
	eof    bool
}

// IsEOF reports whether a read hit the end of data or the handle is closed.
func (o *operator) IsEOF() bool { return o.h == nil || o.eof }

// IsClosed reports whether Close was called.
func (o *operator) IsClosed() bool { return o.h == nil }

// IsLocked reports whether this handle holds its lock.
func (o *operator) IsLocked() bool { return o.locked }

// File returns the entity the handle was opened for.
func (o *operator) File() File { return o.file }

func (o *operator) operatorErr(msg string, err error) error {
	return &Error{Kind: KindOperator, Path: o.file.path, Msg: msg, Err: err}
}

func (o *operator) streamErr(msg string, err error) error {
	return &Error{Kind: o.kind, Path: o.file.path, Msg: msg, Err: err}
}

func (o *operator) ensureOpen() error {
	if o.h == nil {
		return o.operatorErr("handle is closed", nil)
	}

	return nil
}

// Lock takes the lock, waiting until it is granted.
func (o *operator) Lock() error {
	return o.lock(fs.Lock)
}

// TryLock takes the lock or fails at once. Contention is reported as an
// error wrapping [fs.ErrWouldBlock].
func (o *operator) TryLock() error {
	return o.lock(fs.TryLock)
}

func (o *operator) lock(acquire func(fs.File, fs.LockType) error) error {
	if err := o.ensureOpen(); err != nil {
		return err
	}

	if o.locked {
		return o.operatorErr("already locked", nil)
	}

	if err := acquire(o.h, o.lt); err != nil {
		return o.streamErr(o.lt.String()+" lock", err)
	}

	o.locked = true

	return nil
}

// Unlock releases the lock. The handle must still be open; unlocking an
// unlocked handle does nothing.
func (o *operator) Unlock() error {
	if err := o.ensureOpen(); err != nil {
		return err
	}

	if !o.locked {
		return nil
	}

	if err := o.buf.flush(); err != nil {
		return o.streamErr("flush", err)
	}

	if err := fs.Unlock(o.h); err != nil {
		return o.streamErr("unlock", err)
	}

	o.locked = false

	return nil
}

// Tell returns the logical position: bytes consumed by reads or produced by
// writes, not what the buffer has fetched ahead.
func (o *operator) Tell() (int64, error) {
	if err := o.ensureOpen(); err != nil {
		return 0, err
	}

	if err := o.buf.flush(); err != nil {
		return 0, o.streamErr("flush", err)
	}

	pos, err := o.h.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, o.operatorErr("tell", err)
	}

	return pos - int64(o.buf.unread()), nil
}

// Rewind moves to the start.
func (o *operator) Rewind() error {
	return o.seek(0, io.SeekStart)
}

// SeekToStart moves to offset from the start.
func (o *operator) SeekToStart(offset int64) error {
	return o.seek(offset, io.SeekStart)
}

// SeekBy moves delta bytes from the logical position.
func (o *operator) SeekBy(delta int64) error {
	return o.seek(delta, io.SeekCurrent)
}

// SeekToEnd moves to offset relative to the end.
func (o *operator) SeekToEnd(offset int64) error {
	return o.seek(offset, io.SeekEnd)
}

func (o *operator) seek(offset int64, whence int) error {
	if err := o.ensureOpen(); err != nil {
		return err
	}

	if err := o.buf.flush(); err != nil {
		return o.streamErr("flush", err)
	}

	if whence == io.SeekCurrent {
		offset -= int64(o.buf.unread())
	}

	if _, err := o.h.Seek(offset, whence); err != nil {
		return o.operatorErr("seek", err)
	}

	o.buf.reset(o.h)
	o.eof = false

	return nil
}

// Close flushes pending output, releases the lock and closes the handle.
// Closing twice is a no-op.
func (o *operator) Close() error {
	if o.h == nil {
		return nil
	}

	var errs []error

	if err := o.buf.flush(); err != nil {
		errs = append(errs, o.streamErr("flush", err))
	}

	if o.locked {
		if err := fs.Unlock(o.h); err != nil {
			errs = append(errs, o.streamErr("unlock", err))
		}
	}

	if err := o.h.Close(); err != nil {
		errs = append(errs, o.operatorErr("close", err))
	}

	o.h = nil
	o.locked = false

	return errors.Join(errs...)
}
