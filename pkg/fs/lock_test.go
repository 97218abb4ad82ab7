package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func openTwice(t *testing.T, flag int) (File, File) {
	t.Helper()

	fsys := NewReal()
	path := filepath.Join(t.TempDir(), "lock")

	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("setup WriteFile(%q): %v", path, err)
	}

	f1, err := fsys.OpenFile(path, flag, 0)
	if err != nil {
		t.Fatalf("OpenFile(%q): %v", path, err)
	}
	t.Cleanup(func() { _ = f1.Close() })

	f2, err := fsys.OpenFile(path, flag, 0)
	if err != nil {
		t.Fatalf("OpenFile(%q) second: %v", path, err)
	}
	t.Cleanup(func() { _ = f2.Close() })

	return f1, f2
}

func Test_TryLock_Returns_ErrWouldBlock_When_Other_Handle_Holds_Exclusive(t *testing.T) {
	t.Parallel()

	f1, f2 := openTwice(t, os.O_RDWR)

	if err := TryLock(f1, LockExclusive); err != nil {
		t.Fatalf("TryLock(f1): %v", err)
	}

	err := TryLock(f2, LockExclusive)
	if !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("TryLock(f2) while locked: err=%v, want %v", err, ErrWouldBlock)
	}

	if err := Unlock(f1); err != nil {
		t.Fatalf("Unlock(f1): %v", err)
	}

	if err := TryLock(f2, LockExclusive); err != nil {
		t.Fatalf("TryLock(f2) after release: %v", err)
	}
}

func Test_TryLock_Allows_Multiple_Shared_And_Blocks_Exclusive(t *testing.T) {
	t.Parallel()

	f1, f2 := openTwice(t, os.O_RDWR)

	if err := TryLock(f1, LockShared); err != nil {
		t.Fatalf("TryLock(f1, shared): %v", err)
	}

	if err := TryLock(f2, LockShared); err != nil {
		t.Fatalf("TryLock(f2, shared): %v", err)
	}

	if err := Unlock(f2); err != nil {
		t.Fatalf("Unlock(f2): %v", err)
	}

	err := TryLock(f2, LockExclusive)
	if !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("TryLock(f2, exclusive) while read-locked: err=%v, want %v", err, ErrWouldBlock)
	}
}

func Test_Lock_Blocks_Until_Other_Handle_Unlocks(t *testing.T) {
	t.Parallel()

	f1, f2 := openTwice(t, os.O_RDWR)

	if err := Lock(f1, LockExclusive); err != nil {
		t.Fatalf("Lock(f1): %v", err)
	}

	acquired := make(chan error, 1)

	go func() {
		acquired <- Lock(f2, LockExclusive)
	}()

	select {
	case err := <-acquired:
		t.Fatalf("Lock(f2) returned while f1 held the lock: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	if err := Unlock(f1); err != nil {
		t.Fatalf("Unlock(f1): %v", err)
	}

	select {
	case err := <-acquired:
		if err != nil {
			t.Fatalf("Lock(f2): %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Lock(f2) did not return after f1 unlocked")
	}
}

func Test_Lock_Returns_ErrUnsupported_When_Handle_Has_No_Descriptor(t *testing.T) {
	t.Parallel()

	err := Lock(noFdFile{}, LockShared)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Lock(noFdFile): err=%v, want %v", err, ErrUnsupported)
	}
}

func Test_Lock_Uses_Flocker_When_Implemented(t *testing.T) {
	t.Parallel()

	mem := NewMemory()

	f, err := mem.Create("/locked.txt")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()

	if err := Lock(f, LockExclusive); err != nil {
		t.Fatalf("Lock(memfs file): %v", err)
	}

	if err := Unlock(f); err != nil {
		t.Fatalf("Unlock(memfs file): %v", err)
	}
}

func Test_FlockRetryEINTR_Retries_Until_Success(t *testing.T) {
	t.Parallel()

	calls := 0
	fake := func(int, int) error {
		calls++
		if calls < 3 {
			return unix.EINTR
		}

		return nil
	}

	if err := flockRetryEINTR(fake, 0, 0); err != nil {
		t.Fatalf("flockRetryEINTR: %v", err)
	}

	if got, want := calls, 3; got != want {
		t.Fatalf("calls=%d, want=%d", got, want)
	}
}

type noFdFile struct{ File }

func (noFdFile) Fd() uintptr { return InvalidFd }
