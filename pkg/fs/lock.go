package fs

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// ErrWouldBlock is returned by [TryLock] when the lock is held through
// another open file description.
var ErrWouldBlock = errors.New("lock would block")

// LockType selects between a shared (read) and an exclusive (write) lock.
type LockType int

const (
	LockShared    LockType = unix.LOCK_SH
	LockExclusive LockType = unix.LOCK_EX
)

func (lt LockType) String() string {
	switch lt {
	case LockShared:
		return "shared"
	case LockExclusive:
		return "exclusive"
	default:
		return fmt.Sprintf("LockType(%d)", int(lt))
	}
}

// Flocker is implemented by [File] values that lock themselves instead of
// exposing a descriptor for flock(2). how uses the unix LOCK_* bits.
type Flocker interface {
	Flock(how int) error
}

// Lock places an advisory lock of type lt on f, blocking until it is granted.
//
// flock(2) locks belong to the open file description, so two handles opened
// separately on the same path contend even within one process. The lock is
// released by [Unlock] or when f is closed.
//
// Lock blocks in the kernel with no timeout. Use [TryLock] to avoid unbounded
// blocking.
func Lock(f File, lt LockType) error {
	return flock(f, int(lt))
}

// TryLock attempts to place an advisory lock of type lt on f without blocking.
//
// Returns [ErrWouldBlock] if a conflicting lock is held.
func TryLock(f File, lt LockType) error {
	err := flock(f, int(lt)|unix.LOCK_NB)
	if err != nil && isWouldBlock(err) {
		return ErrWouldBlock
	}

	return err
}

// Unlock releases an advisory lock held on f.
func Unlock(f File) error {
	return flock(f, unix.LOCK_UN)
}

func flock(f File, how int) error {
	if fl, ok := f.(Flocker); ok {
		return fl.Flock(how)
	}

	fd := f.Fd()
	if fd == InvalidFd {
		return fmt.Errorf("flock: %w", ErrUnsupported)
	}

	err := flockRetryEINTR(unix.Flock, int(fd), how)
	if err != nil {
		return fmt.Errorf("flock: %w", err)
	}

	return nil
}

func isWouldBlock(err error) bool {
	return errors.Is(err, ErrWouldBlock) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN)
}

// flockRetryEINTR wraps flock, retrying on EINTR.
//
// EINTR means the syscall was interrupted by a signal before it could
// complete (SIGWINCH, SIGCHLD, timers). The lock request did not fail, it
// just needs to be issued again.
//
// Retries are capped to avoid spinning forever under a signal storm. Go's
// stdlib (ignoringEINTR in the os package) retries without a cap.
func flockRetryEINTR(flock func(fd int, how int) error, fd int, how int) error {
	const maxEINTRRetries = 10000

	var err error
	for range maxEINTRRetries {
		err = flock(fd, how)
		if err == nil || !errors.Is(err, unix.EINTR) {
			return err
		}
	}

	return err
}
