package filesys

import (
	"errors"
	"io"
	"os"
	"syscall"
)

// Copy copies the regular file src to dst, keeping its permission bits.
//
// src must be a readable file and dst's parent a directory; otherwise the
// error is [ErrNotFile], [ErrNotReadable] or [ErrNotDirectory]. A dst that
// is src itself, by path or by inode, and a failed copy return [ErrCopy].
func Copy(src, dst File) error {
	if err := checkTransfer(src, dst); err != nil {
		return err
	}

	if err := copyContent(src, dst); err != nil {
		return &Error{Kind: KindCopy, Path: src.path, Dest: dst.path, Err: err}
	}

	return nil
}

// Move renames src to dst, copying and deleting when the two are on
// different devices or backends. Preconditions are those of [Copy].
func Move(src, dst File) error {
	if err := checkTransfer(src, dst); err != nil {
		return err
	}

	if src.fs() == dst.fs() {
		err := src.fs().Rename(src.path, dst.path)
		if err == nil {
			return nil
		}

		if !errors.Is(err, syscall.EXDEV) {
			return &Error{Kind: KindCopy, Path: src.path, Dest: dst.path, Err: err}
		}
	}

	if err := copyContent(src, dst); err != nil {
		return &Error{Kind: KindCopy, Path: src.path, Dest: dst.path, Err: err}
	}

	if err := src.fs().Remove(src.path); err != nil {
		return &Error{Kind: KindCopy, Path: src.path, Dest: dst.path, Msg: "remove source", Err: err}
	}

	return nil
}

func checkTransfer(src, dst File) error {
	if !src.IsFile() {
		return &Error{Kind: KindNotFile, Path: src.path}
	}

	if !src.CanRead() {
		return &Error{Kind: KindNotReadable, Path: src.path}
	}

	if parent := dst.Parent(); !parent.IsDir() {
		return &Error{Kind: KindNotDirectory, Path: parent.path}
	}

	if sameFile(src, dst) {
		return &Error{Kind: KindCopy, Path: src.path, Dest: dst.path, Msg: "source and destination are the same file"}
	}

	return nil
}

// sameFile reports whether dst exists and names the same file as src.
// Backends without inode identity fall back to comparing absolute paths.
func sameFile(src, dst File) bool {
	dstInfo, err := dst.fs().Stat(dst.path)
	if err != nil {
		return false
	}

	srcInfo, err := src.fs().Stat(src.path)
	if err != nil {
		return false
	}

	if os.SameFile(srcInfo, dstInfo) {
		return true
	}

	if src.fs() != dst.fs() {
		return false
	}

	srcAbs, err := src.fs().Abs(src.path)
	if err != nil {
		return false
	}

	dstAbs, err := dst.fs().Abs(dst.path)

	return err == nil && srcAbs == dstAbs
}

func copyContent(src, dst File) (err error) {
	in, err := src.fs().Open(src.path)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := dst.fs().OpenFile(dst.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	defer func() { err = errors.Join(err, out.Close()) }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}

	if err := out.Chmod(info.Mode().Perm()); err != nil {
		return err
	}

	return out.Sync()
}

// OutputFile writes each line followed by the System's line ending,
// replacing the content of f. Open failures are [ErrOpen]; failed writes,
// including those surfacing only when buffered output is flushed, are
// [ErrOutput].
func OutputFile(f File, lines []string) error {
	w, err := f.OpenForWrite()
	if err != nil {
		return err
	}

	le := f.system().lineEnding

	for _, line := range lines {
		if _, err := w.WriteString(line + le); err != nil {
			return &Error{Kind: KindOutput, Path: f.path, Err: errors.Join(err, w.Close())}
		}
	}

	if err := w.Flush(); err != nil {
		return &Error{Kind: KindOutput, Path: f.path, Err: errors.Join(err, w.Close())}
	}

	if err := w.Close(); err != nil {
		return &Error{Kind: KindOutput, Path: f.path, Err: err}
	}

	return nil
}
