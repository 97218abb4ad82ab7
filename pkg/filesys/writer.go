package filesys

import (
	"bufio"
	"errors"
	"os"

	"github.com/calvinalkan/filesys/pkg/fs"
)

// Writer writes to an open file through a buffer. Its lock is exclusive.
//
// Seeking, Tell, Unlock and Close flush pending output first. A Writer is
// not safe for concurrent use.
type Writer struct {
	operator

	bw *bufio.Writer
}

type writeBuffer struct{ *bufio.Writer }

func (b writeBuffer) flush() error { return b.Flush() }
func (writeBuffer) unread() int    { return 0 }
func (writeBuffer) reset(fs.File)  {}

// OpenForWrite opens f for writing, creating or truncating it.
func (f File) OpenForWrite() (*Writer, error) {
	return f.openWriter(os.O_TRUNC)
}

// OpenForAppend opens f for writing at the end, creating it when missing.
func (f File) OpenForAppend() (*Writer, error) {
	return f.openWriter(os.O_APPEND)
}

func (f File) openWriter(mode int) (*Writer, error) {
	h, err := f.fs().OpenFile(f.path, os.O_WRONLY|os.O_CREATE|mode, f.system().fileMode)
	if err != nil {
		return nil, &Error{Kind: KindOpen, Path: f.path, Err: err}
	}

	bw := bufio.NewWriter(h)

	return &Writer{
		operator: operator{file: f, h: h, kind: KindWriter, lt: fs.LockExclusive, buf: writeBuffer{bw}},
		bw:       bw,
	}, nil
}

// WithWriter opens f for writing, calls fn and closes the Writer.
func (f File) WithWriter(fn func(w *Writer) error) (err error) {
	w, err := f.OpenForWrite()
	if err != nil {
		return err
	}

	defer func() { err = errors.Join(err, w.Close()) }()

	return fn(w)
}

// Flush writes buffered data to the file.
func (w *Writer) Flush() error {
	if err := w.ensureOpen(); err != nil {
		return err
	}

	if err := w.bw.Flush(); err != nil {
		return w.streamErr("flush", err)
	}

	return nil
}

// Write implements [io.Writer].
func (w *Writer) Write(p []byte) (int, error) {
	if err := w.ensureOpen(); err != nil {
		return 0, err
	}

	n, err := w.bw.Write(p)
	if err != nil {
		return n, w.streamErr("write", err)
	}

	return n, nil
}

// WriteString writes data and returns the number of bytes written.
func (w *Writer) WriteString(data string) (int, error) {
	if err := w.ensureOpen(); err != nil {
		return 0, err
	}

	n, err := w.bw.WriteString(data)
	if err != nil {
		return n, w.streamErr("write", err)
	}

	return n, nil
}

// WriteN writes at most length bytes of data.
func (w *Writer) WriteN(data string, length int) (int, error) {
	if length <= 0 {
		return 0, invalidArg("write length must be positive")
	}

	if length < len(data) {
		data = data[:length]
	}

	return w.WriteString(data)
}
