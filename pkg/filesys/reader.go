package filesys

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/calvinalkan/filesys/pkg/fs"
)

// Reader reads from an open file. Its lock is shared.
//
// Reads past the end return io.EOF, after which IsEOF reports true. A
// Reader is not safe for concurrent use.
type Reader struct {
	operator

	br *bufio.Reader
}

type readBuffer struct{ *bufio.Reader }

func (readBuffer) flush() error      { return nil }
func (b readBuffer) unread() int     { return b.Buffered() }
func (b readBuffer) reset(h fs.File) { b.Reset(h) }

// OpenForRead opens f for reading.
func (f File) OpenForRead() (*Reader, error) {
	h, err := f.fs().Open(f.path)
	if err != nil {
		return nil, &Error{Kind: KindOpen, Path: f.path, Err: err}
	}

	br := bufio.NewReader(h)

	return &Reader{
		operator: operator{file: f, h: h, kind: KindReader, lt: fs.LockShared, buf: readBuffer{br}},
		br:       br,
	}, nil
}

// WithReader opens f for reading, calls fn and closes the Reader.
func (f File) WithReader(fn func(r *Reader) error) (err error) {
	r, err := f.OpenForRead()
	if err != nil {
		return err
	}

	defer func() { err = errors.Join(err, r.Close()) }()

	return fn(r)
}

// Read returns up to n bytes. It returns fewer only at the end of data,
// and ("", io.EOF) once nothing is left.
func (r *Reader) Read(n int) (string, error) {
	if err := r.ensureOpen(); err != nil {
		return "", err
	}

	if n <= 0 {
		return "", invalidArg("read length must be positive")
	}

	buf := make([]byte, n)

	got, err := io.ReadFull(r.br, buf)

	switch {
	case err == nil:
		return string(buf), nil
	case errors.Is(err, io.EOF):
		r.eof = true

		return "", io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		r.eof = true

		return string(buf[:got]), nil
	default:
		return "", r.streamErr("read", err)
	}
}

// ReadChar returns the next byte as a string.
func (r *Reader) ReadChar() (string, error) {
	if err := r.ensureOpen(); err != nil {
		return "", err
	}

	c, err := r.br.ReadByte()
	if err != nil {
		return "", r.readErr(err)
	}

	return string([]byte{c}), nil
}

// ReadLine returns the next line including its "\n". The last line is
// returned without one when the data does not end with a newline.
func (r *Reader) ReadLine() (string, error) {
	if err := r.ensureOpen(); err != nil {
		return "", err
	}

	line, err := r.br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			r.eof = true

			return line, nil
		}

		return "", r.readErr(err)
	}

	return line, nil
}

// ReadLineMax is [Reader.ReadLine] reading at most maxLen-1 bytes.
func (r *Reader) ReadLineMax(maxLen int) (string, error) {
	if err := r.ensureOpen(); err != nil {
		return "", err
	}

	if maxLen <= 0 {
		return "", invalidArg("line length must be positive")
	}

	var b strings.Builder

	for b.Len() < maxLen-1 {
		c, err := r.br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && b.Len() > 0 {
				r.eof = true

				break
			}

			return "", r.readErr(err)
		}

		b.WriteByte(c)

		if c == '\n' {
			break
		}
	}

	return b.String(), nil
}

func (r *Reader) readErr(err error) error {
	if errors.Is(err, io.EOF) {
		r.eof = true

		return io.EOF
	}

	return r.streamErr("read", err)
}
