package filesys

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/calvinalkan/filesys/pkg/fs"
)

// Default modes, applied before umask.
const (
	DefaultDirMode  os.FileMode = 0o777
	DefaultFileMode os.FileMode = 0o666
)

// Options configures a [System]. Zero fields take host defaults.
type Options struct {
	// FS is the backend. Defaults to [fs.NewReal].
	FS fs.FS

	// Separator joins parent and child paths. Defaults to the host separator.
	Separator string

	// DirMode is used by Mkdir and Mkfile. Defaults to [DefaultDirMode].
	DirMode os.FileMode

	// FileMode is used when a write creates a file. Defaults to [DefaultFileMode].
	FileMode os.FileMode

	// LineEnding joins lines in Put and OutputFile. Defaults to "\n".
	LineEnding string

	// Logger receives debug records for mutations and warnings for
	// partial failures. Defaults to a logger that discards everything.
	Logger *slog.Logger
}

// System binds a backend and its defaults. Files created from a System
// carry it along, so a System is the only configuration a File needs.
//
// A System is immutable and safe for concurrent use.
type System struct {
	fs         fs.FS
	sep        string
	dirMode    os.FileMode
	fileMode   os.FileMode
	lineEnding string
	log        *slog.Logger
}

// New returns a System configured by opts.
func New(opts Options) *System {
	s := &System{
		fs:         opts.FS,
		sep:        opts.Separator,
		dirMode:    opts.DirMode,
		fileMode:   opts.FileMode,
		lineEnding: opts.LineEnding,
		log:        opts.Logger,
	}

	if s.fs == nil {
		s.fs = fs.NewReal()
	}

	if s.sep == "" {
		s.sep = string(filepath.Separator)
	}

	if s.dirMode == 0 {
		s.dirMode = DefaultDirMode
	}

	if s.fileMode == 0 {
		s.fileMode = DefaultFileMode
	}

	if s.lineEnding == "" {
		s.lineEnding = "\n"
	}

	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}

	return s
}

var defaultSystem = sync.OnceValue(func() *System { return New(Options{}) })

// Default returns the System for the real filesystem with host defaults.
func Default() *System {
	return defaultSystem()
}

// File returns the entity for path.
func (s *System) File(path string) File {
	return File{path: path, sys: s}
}

// FileIn returns the entity for name inside parent.
func (s *System) FileIn(parent File, name string) File {
	return s.File(strings.TrimRight(parent.path, s.sep) + s.sep + name)
}

func (s *System) FS() fs.FS             { return s.fs }
func (s *System) Separator() string     { return s.sep }
func (s *System) DirMode() os.FileMode  { return s.dirMode }
func (s *System) FileMode() os.FileMode { return s.fileMode }
func (s *System) LineEnding() string    { return s.lineEnding }
func (s *System) Logger() *slog.Logger  { return s.log }
