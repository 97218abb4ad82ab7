package fs

import (
	"errors"
	"math/rand/v2"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// ChaosConfig controls fault injection probabilities.
// Each rate is a float64 from 0.0 (never) to 1.0 (always).
//
// The zero value disables all fault injection. A rate of 1.0 makes the
// matching operation fail deterministically, which is what error-translation
// tests use.
type ChaosConfig struct {
	// OpenFailRate controls how often Open, Create, and OpenFile fail.
	OpenFailRate float64

	// ReadFailRate controls how often ReadFile and File.Read fail with EIO.
	ReadFailRate float64

	// WriteFailRate controls how often WriteFile and File.Write fail.
	WriteFailRate float64

	// SeekFailRate controls how often File.Seek fails with EIO.
	SeekFailRate float64

	// SyncFailRate controls how often File.Sync fails.
	SyncFailRate float64

	// StatFailRate controls how often Stat, Lstat, Exists, Access, and Abs
	// fail on a path.
	StatFailRate float64

	// ReadDirFailRate controls how often ReadDir fails.
	ReadDirFailRate float64

	// MkdirFailRate controls how often Mkdir and MkdirAll fail.
	MkdirFailRate float64

	// RemoveFailRate controls how often Remove and RemoveAll fail.
	RemoveFailRate float64

	// RenameFailRate controls how often Rename fails. Returns an
	// *os.LinkError like [os.Rename].
	RenameFailRate float64

	// ChangeFailRate controls how often Chmod and Chtimes fail.
	ChangeFailRate float64
}

// ChaosMode controls how [Chaos] behaves.
type ChaosMode uint8

const (
	// ChaosModeActive enables fault-rate injection.
	// This is the default mode for a new [Chaos].
	ChaosModeActive ChaosMode = iota

	// ChaosModeNoOp passes every operation directly to the underlying FS.
	ChaosModeNoOp
)

// chaosError marks an error as intentionally injected by [Chaos].
//
// It wraps an [*os.PathError] or [*os.LinkError] carrying a real
// [syscall.Errno], so errors.Is and os.IsPermission keep working.
type chaosError struct {
	Err error
}

func (e *chaosError) Error() string {
	return "chaos: " + e.Err.Error()
}

func (e *chaosError) Unwrap() error {
	return e.Err
}

// IsChaosErr reports whether err (or any wrapped error) was injected by [Chaos].
func IsChaosErr(err error) bool {
	var injected *chaosError

	return errors.As(err, &injected)
}

// Chaos wraps an [FS] and injects failures for testing.
//
// Chaos never injects ENOENT: missing-path results always come from the
// wrapped [FS]. Each call independently decides whether to inject.
type Chaos struct {
	fs     FS
	config ChaosConfig
	mode   atomic.Uint32
	faults atomic.Int64

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewChaos creates a new [Chaos] filesystem wrapping the given [FS].
// The seed makes injection reproducible. Panics if underlying is nil.
func NewChaos(underlying FS, seed int64, config ChaosConfig) *Chaos {
	if underlying == nil {
		panic("underlying fs is nil")
	}

	return &Chaos{
		fs:     underlying,
		config: config,
		rng:    rand.New(rand.NewPCG(uint64(seed), uint64(seed))),
	}
}

// SetMode switches between injecting and passing through. Safe to call
// concurrently with filesystem operations.
func (c *Chaos) SetMode(m ChaosMode) { c.mode.Store(uint32(m)) }

// Faults returns how many faults were injected so far.
func (c *Chaos) Faults() int64 { return c.faults.Load() }

// --- File Operations ---

func (c *Chaos) Open(path string) (File, error) {
	return c.open(path, openErrnos, func() (File, error) { return c.fs.Open(path) })
}

func (c *Chaos) Create(path string) (File, error) {
	return c.open(path, createErrnos, func() (File, error) { return c.fs.Create(path) })
}

func (c *Chaos) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	errnos := openErrnos
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE) != 0 {
		errnos = createErrnos
	}

	return c.open(path, errnos, func() (File, error) { return c.fs.OpenFile(path, flag, perm) })
}

func (c *Chaos) open(path string, errnos []syscall.Errno, openFn func() (File, error)) (File, error) {
	if err := c.inject(c.config.OpenFailRate, "open", path, errnos); err != nil {
		return nil, err
	}

	f, err := openFn()
	if err != nil {
		return nil, err
	}

	return &chaosFile{File: f, chaos: c, path: path}, nil
}

func (c *Chaos) ReadFile(path string) ([]byte, error) {
	if err := c.inject(c.config.ReadFailRate, "read", path, []syscall.Errno{syscall.EIO}); err != nil {
		return nil, err
	}

	return c.fs.ReadFile(path)
}

func (c *Chaos) WriteFile(path string, data []byte, perm os.FileMode) error {
	if err := c.inject(c.config.WriteFailRate, "write", path, writeErrnos); err != nil {
		return err
	}

	return c.fs.WriteFile(path, data, perm)
}

// --- Directory Operations ---

func (c *Chaos) ReadDir(path string) ([]os.DirEntry, error) {
	errnos := []syscall.Errno{syscall.EACCES, syscall.EIO, syscall.EMFILE, syscall.ENFILE}
	if err := c.inject(c.config.ReadDirFailRate, "readdirent", path, errnos); err != nil {
		return nil, err
	}

	return c.fs.ReadDir(path)
}

func (c *Chaos) Mkdir(path string, perm os.FileMode) error {
	if err := c.inject(c.config.MkdirFailRate, "mkdir", path, mkdirErrnos); err != nil {
		return err
	}

	return c.fs.Mkdir(path, perm)
}

func (c *Chaos) MkdirAll(path string, perm os.FileMode) error {
	if err := c.inject(c.config.MkdirFailRate, "mkdir", path, mkdirErrnos); err != nil {
		return err
	}

	return c.fs.MkdirAll(path, perm)
}

// --- Metadata ---

func (c *Chaos) Stat(path string) (os.FileInfo, error) {
	if err := c.inject(c.config.StatFailRate, "stat", path, statErrnos); err != nil {
		return nil, err
	}

	return c.fs.Stat(path)
}

func (c *Chaos) Lstat(path string) (os.FileInfo, error) {
	if err := c.inject(c.config.StatFailRate, "lstat", path, statErrnos); err != nil {
		return nil, err
	}

	return c.fs.Lstat(path)
}

func (c *Chaos) Exists(path string) (bool, error) {
	if err := c.inject(c.config.StatFailRate, "stat", path, statErrnos); err != nil {
		return false, err
	}

	return c.fs.Exists(path)
}

func (c *Chaos) Access(path string, mode AccessMode) error {
	if err := c.inject(c.config.StatFailRate, "access", path, statErrnos); err != nil {
		return err
	}

	return c.fs.Access(path, mode)
}

func (c *Chaos) Abs(path string) (string, error) {
	if err := c.inject(c.config.StatFailRate, "lstat", path, statErrnos); err != nil {
		return "", err
	}

	return c.fs.Abs(path)
}

func (c *Chaos) Chmod(path string, mode os.FileMode) error {
	if err := c.inject(c.config.ChangeFailRate, "chmod", path, changeErrnos); err != nil {
		return err
	}

	return c.fs.Chmod(path, mode)
}

func (c *Chaos) Chtimes(path string, atime, mtime time.Time) error {
	if err := c.inject(c.config.ChangeFailRate, "chtimes", path, changeErrnos); err != nil {
		return err
	}

	return c.fs.Chtimes(path, atime, mtime)
}

// --- Mutations ---

func (c *Chaos) Remove(path string) error {
	if err := c.inject(c.config.RemoveFailRate, "remove", path, removeErrnos); err != nil {
		return err
	}

	return c.fs.Remove(path)
}

func (c *Chaos) RemoveAll(path string) error {
	if err := c.inject(c.config.RemoveFailRate, "removeall", path, removeErrnos); err != nil {
		return err
	}

	return c.fs.RemoveAll(path)
}

func (c *Chaos) Rename(oldpath, newpath string) error {
	if c.should(c.config.RenameFailRate) {
		errno := c.pick([]syscall.Errno{syscall.EACCES, syscall.EIO, syscall.ENOSPC, syscall.EROFS, syscall.EPERM})

		return &chaosError{Err: &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: errno}}
	}

	return c.fs.Rename(oldpath, newpath)
}

// Errno sets per operation. ENOENT and EINTR are never injected.
var (
	openErrnos   = []syscall.Errno{syscall.EACCES, syscall.EIO, syscall.EMFILE, syscall.ENFILE}
	createErrnos = []syscall.Errno{syscall.EACCES, syscall.EIO, syscall.ENOSPC, syscall.EDQUOT, syscall.EROFS}
	writeErrnos  = []syscall.Errno{syscall.EIO, syscall.ENOSPC, syscall.EDQUOT, syscall.EROFS}
	mkdirErrnos  = []syscall.Errno{syscall.EACCES, syscall.EIO, syscall.ENOSPC, syscall.EROFS}
	statErrnos   = []syscall.Errno{syscall.EACCES, syscall.EIO}
	removeErrnos = []syscall.Errno{syscall.EACCES, syscall.EPERM, syscall.EBUSY, syscall.EIO, syscall.EROFS}
	changeErrnos = []syscall.Errno{syscall.EACCES, syscall.EPERM, syscall.EROFS}
)

func (c *Chaos) inject(rate float64, op, path string, errnos []syscall.Errno) error {
	if !c.should(rate) {
		return nil
	}

	return &chaosError{Err: &os.PathError{Op: op, Path: path, Err: c.pick(errnos)}}
}

func (c *Chaos) should(rate float64) bool {
	if ChaosMode(c.mode.Load()) != ChaosModeActive || rate <= 0 {
		return false
	}

	c.rngMu.Lock()
	hit := c.rng.Float64() < rate
	c.rngMu.Unlock()

	if hit {
		c.faults.Add(1)
	}

	return hit
}

func (c *Chaos) pick(errnos []syscall.Errno) syscall.Errno {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()

	return errnos[c.rng.IntN(len(errnos))]
}

// chaosFile wraps a [File] and injects faults on Read, Write, Seek, and Sync.
// Everything else is promoted from the embedded handle.
type chaosFile struct {
	File
	chaos *Chaos
	path  string
}

func (cf *chaosFile) Read(p []byte) (int, error) {
	if err := cf.chaos.inject(cf.chaos.config.ReadFailRate, "read", cf.path, []syscall.Errno{syscall.EIO}); err != nil {
		return 0, err
	}

	return cf.File.Read(p)
}

func (cf *chaosFile) Write(p []byte) (int, error) {
	if err := cf.chaos.inject(cf.chaos.config.WriteFailRate, "write", cf.path, writeErrnos); err != nil {
		return 0, err
	}

	return cf.File.Write(p)
}

func (cf *chaosFile) Seek(offset int64, whence int) (int64, error) {
	if err := cf.chaos.inject(cf.chaos.config.SeekFailRate, "seek", cf.path, []syscall.Errno{syscall.EIO}); err != nil {
		return 0, err
	}

	return cf.File.Seek(offset, whence)
}

func (cf *chaosFile) Sync() error {
	if err := cf.chaos.inject(cf.chaos.config.SyncFailRate, "sync", cf.path, writeErrnos); err != nil {
		return err
	}

	return cf.File.Sync()
}

// Flock forwards to the wrapped handle so locking works through Chaos.
func (cf *chaosFile) Flock(how int) error {
	return flock(cf.File, how)
}

// Compile-time interface checks.
var (
	_ FS      = (*Chaos)(nil)
	_ File    = (*chaosFile)(nil)
	_ Flocker = (*chaosFile)(nil)
)
