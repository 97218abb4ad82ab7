package filesys

import (
	"errors"
	"os"
	"strings"

	"github.com/calvinalkan/filesys/pkg/fs"
)

// Kind classifies an [*Error].
type Kind uint8

const (
	KindInput Kind = iota + 1
	KindOutput
	KindRename
	KindCopy
	KindMakeDirectory
	KindMakeFile
	KindNotDirectory
	KindNotFile
	KindNotReadable
	KindOpen
	KindOperator
	KindReader
	KindWriter
	KindNotFound
	KindDelete
	KindInvalidArgument
)

var kindText = map[Kind]string{
	KindInput:           "reading file failed",
	KindOutput:          "writing file failed",
	KindRename:          "renaming file failed",
	KindCopy:            "copying file failed",
	KindMakeDirectory:   "making directory failed",
	KindMakeFile:        "making file failed",
	KindNotDirectory:    "not a directory",
	KindNotFile:         "not a file",
	KindNotReadable:     "file is not readable",
	KindOpen:            "opening file failed",
	KindOperator:        "operator",
	KindReader:          "reader",
	KindWriter:          "writer",
	KindNotFound:        "no such file or directory",
	KindDelete:          "deleting file failed",
	KindInvalidArgument: "invalid argument",
}

func (k Kind) String() string {
	if s, ok := kindText[k]; ok {
		return s
	}

	return "unknown error"
}

// Sentinels for errors.Is. An [*Error] matches the sentinel of its Kind.
var (
	ErrInput           = &Error{Kind: KindInput}
	ErrOutput          = &Error{Kind: KindOutput}
	ErrRename          = &Error{Kind: KindRename}
	ErrCopy            = &Error{Kind: KindCopy}
	ErrMakeDirectory   = &Error{Kind: KindMakeDirectory}
	ErrMakeFile        = &Error{Kind: KindMakeFile}
	ErrNotDirectory    = &Error{Kind: KindNotDirectory}
	ErrNotFile         = &Error{Kind: KindNotFile}
	ErrNotReadable     = &Error{Kind: KindNotReadable}
	ErrOpen            = &Error{Kind: KindOpen}
	ErrOperator        = &Error{Kind: KindOperator}
	ErrReader          = &Error{Kind: KindReader}
	ErrWriter          = &Error{Kind: KindWriter}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrDelete          = &Error{Kind: KindDelete}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
)

// ErrUnsupported is returned (wrapped) when the backend cannot answer a
// query, for example the owner of a file on an in-memory filesystem.
var ErrUnsupported = fs.ErrUnsupported

// Error is the single error type returned by this package.
//
// The message is built from Kind, the paths involved and Msg, followed by
// the cause:
//
//	renaming file failed: a.txt -> b/a.txt: rename a.txt b/a.txt: no such file or directory
type Error struct {
	Kind Kind
	Path string
	Dest string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Kind.String())

	if e.Path != "" {
		b.WriteString(": ")
		b.WriteString(e.Path)

		if e.Dest != "" {
			b.WriteString(" -> ")
			b.WriteString(e.Dest)
		}
	}

	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so errors.Is(err, ErrInput) holds
// for every input failure regardless of path or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}

	return e.Kind, true
}

// statError maps a failed stat-like call to NotFound, NotReadable or the
// given fallback kind.
func statError(fallback Kind, path string, err error) *Error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &Error{Kind: KindNotFound, Path: path, Err: err}
	case errors.Is(err, os.ErrPermission):
		return &Error{Kind: KindNotReadable, Path: path, Err: err}
	default:
		return &Error{Kind: fallback, Path: path, Err: err}
	}
}

func invalidArg(msg string) *Error {
	return &Error{Kind: KindInvalidArgument, Msg: msg}
}
