package filesys

import (
	"bytes"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/calvinalkan/filesys/pkg/fs"
)

// Bytes returns the whole content.
func (f File) Bytes() ([]byte, error) {
	data, err := f.fs().ReadFile(f.path)
	if err != nil {
		return nil, &Error{Kind: KindInput, Path: f.path, Err: err}
	}

	return data, nil
}

// Get returns the whole content as a string.
func (f File) Get() (string, error) {
	data, err := f.Bytes()
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Lines returns the content split into lines without their terminators.
// A final line terminator does not produce a trailing empty line.
func (f File) Lines() ([]string, error) {
	content, err := f.Get()
	if err != nil {
		return nil, err
	}

	if content == "" {
		return []string{}, nil
	}

	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines, nil
}

// PutOptions selects how [File.PutWith] writes.
type PutOptions struct {
	// ExclusiveLock holds a blocking exclusive flock while writing.
	ExclusiveLock bool

	// Atomic writes a temp file and renames it over the path.
	Atomic bool
}

// Put replaces the content with contents. See [File.PutWith].
func (f File) Put(contents any) (File, error) {
	return f.PutWith(contents, PutOptions{})
}

// PutWith replaces the content with contents, creating the file with the
// System's file mode when missing.
//
// contents is converted in this order: string or []byte as is; []string
// joined with the System's line ending; a File's content; MarshalBinary;
// MarshalJSON (HTML and unicode left unescaped); String; an io.Reader
// streamed. Any other value fails with [ErrOutput].
func (f File) PutWith(contents any, opts PutOptions) (File, error) {
	if opts.ExclusiveLock && opts.Atomic {
		return f, invalidArg("ExclusiveLock and Atomic are mutually exclusive")
	}

	r, err := f.contentReader(contents)
	if err != nil {
		return f, err
	}

	sys := f.system()

	switch {
	case opts.Atomic:
		err = fs.WriteFileAtomic(sys.fs, f.path, r, sys.fileMode)
	case opts.ExclusiveLock:
		err = f.writeLocked(r)
	default:
		err = f.write(r, os.O_TRUNC)
	}

	if err != nil {
		return f, &Error{Kind: KindOutput, Path: f.path, Err: err}
	}

	sys.log.Debug("put", "path", f.path, "atomic", opts.Atomic, "lock", opts.ExclusiveLock)

	return f, nil
}

// Append adds contents to the end of the file, creating it when missing.
// contents is converted like in [File.PutWith].
func (f File) Append(contents any) (File, error) {
	r, err := f.contentReader(contents)
	if err != nil {
		return f, err
	}

	if err := f.write(r, os.O_APPEND); err != nil {
		return f, &Error{Kind: KindOutput, Path: f.path, Err: err}
	}

	return f, nil
}

func (f File) write(r io.Reader, mode int) (err error) {
	h, err := f.fs().OpenFile(f.path, os.O_WRONLY|os.O_CREATE|mode, f.system().fileMode)
	if err != nil {
		return err
	}

	defer func() { err = errors.Join(err, h.Close()) }()

	_, err = io.Copy(h, r)

	return err
}

// writeLocked truncates only after the lock is granted, so a reader holding
// a shared lock never sees the file emptied.
func (f File) writeLocked(r io.Reader) (err error) {
	h, err := f.fs().OpenFile(f.path, os.O_WRONLY|os.O_CREATE, f.system().fileMode)
	if err != nil {
		return err
	}

	defer func() { err = errors.Join(err, h.Close()) }()

	if err := fs.Lock(h, fs.LockExclusive); err != nil {
		return err
	}

	defer func() { err = errors.Join(err, fs.Unlock(h)) }()

	if err := h.Truncate(0); err != nil {
		return err
	}

	if _, err := io.Copy(h, r); err != nil {
		return err
	}

	return h.Sync()
}

func (f File) contentReader(contents any) (io.Reader, error) {
	switch v := contents.(type) {
	case string:
		return strings.NewReader(v), nil
	case []byte:
		return bytes.NewReader(v), nil
	case []string:
		return strings.NewReader(strings.Join(v, f.system().lineEnding)), nil
	case File:
		data, err := v.Bytes()
		if err != nil {
			return nil, err
		}

		return bytes.NewReader(data), nil
	case encoding.BinaryMarshaler:
		data, err := v.MarshalBinary()
		if err != nil {
			return nil, &Error{Kind: KindOutput, Path: f.path, Msg: "marshal binary", Err: err}
		}

		return bytes.NewReader(data), nil
	case json.Marshaler:
		var buf bytes.Buffer

		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)

		if err := enc.Encode(v); err != nil {
			return nil, &Error{Kind: KindOutput, Path: f.path, Msg: "marshal json", Err: err}
		}

		return bytes.NewReader(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
	case fmt.Stringer:
		return strings.NewReader(v.String()), nil
	case io.Reader:
		return v, nil
	default:
		return nil, &Error{Kind: KindOutput, Path: f.path, Msg: fmt.Sprintf("value of type %T is not stringable", contents)}
	}
}
