package fs

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

func Test_Chaos_Injects_Marked_PathError_When_Rate_Is_One(t *testing.T) {
	t.Parallel()

	chaos := NewChaos(NewReal(), 1, ChaosConfig{OpenFailRate: 1})
	path := filepath.Join(t.TempDir(), "f.txt")

	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, err := chaos.Open(path)
	if err == nil {
		t.Fatal("Open succeeded, want injected failure")
	}

	if !IsChaosErr(err) {
		t.Fatalf("IsChaosErr(%v)=false, want true", err)
	}

	var pathErr *os.PathError
	if !errors.As(err, &pathErr) {
		t.Fatalf("err=%T, want *os.PathError underneath", err)
	}

	if errors.Is(err, os.ErrNotExist) {
		t.Fatalf("injected error %v looks like ENOENT", err)
	}

	if got, want := chaos.Faults(), int64(1); got != want {
		t.Fatalf("Faults()=%d, want=%d", got, want)
	}
}

func Test_Chaos_Passes_Through_When_Mode_Is_NoOp(t *testing.T) {
	t.Parallel()

	chaos := NewChaos(NewReal(), 1, ChaosConfig{
		OpenFailRate:  1,
		StatFailRate:  1,
		MkdirFailRate: 1,
	})
	chaos.SetMode(ChaosModeNoOp)

	dir := filepath.Join(t.TempDir(), "d")

	if err := chaos.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	exists, err := chaos.Exists(dir)
	if err != nil || !exists {
		t.Fatalf("Exists=%v, %v; want true, nil", exists, err)
	}

	if got := chaos.Faults(); got != 0 {
		t.Fatalf("Faults()=%d, want 0", got)
	}
}

func Test_Chaos_Rename_Returns_LinkError(t *testing.T) {
	t.Parallel()

	chaos := NewChaos(NewMemory(), 7, ChaosConfig{RenameFailRate: 1})

	err := chaos.Rename("/a", "/b")

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		t.Fatalf("Rename: err=%T %v, want *os.LinkError", err, err)
	}

	var errno syscall.Errno
	if !errors.As(err, &errno) {
		t.Fatalf("Rename: err=%v, want errno underneath", err)
	}
}

func Test_Chaos_File_Write_Fails_But_Handle_Still_Closes(t *testing.T) {
	t.Parallel()

	chaos := NewChaos(NewReal(), 3, ChaosConfig{WriteFailRate: 1})
	path := filepath.Join(t.TempDir(), "f.txt")

	f, err := chaos.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := f.Write([]byte("data"))
	if err == nil || n != 0 {
		t.Fatalf("Write = %d, %v; want 0 and an injected error", n, err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func Test_Chaos_File_Can_Be_Locked(t *testing.T) {
	t.Parallel()

	chaos := NewChaos(NewReal(), 3, ChaosConfig{})
	path := filepath.Join(t.TempDir(), "f.txt")

	f, err := chaos.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()

	if err := TryLock(f, LockExclusive); err != nil {
		t.Fatalf("TryLock: %v", err)
	}

	if err := Unlock(f); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
}
