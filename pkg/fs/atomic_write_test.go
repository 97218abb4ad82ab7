package fs_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/calvinalkan/filesys/pkg/fs"
)

const testContentHello = "hello, world"

func Test_AtomicWriter_Write_Replaces_File_And_Leaves_No_Temp(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "final.txt")

	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	writer := fs.NewAtomicWriter(fs.NewReal())

	err := writer.Write(path, strings.NewReader(testContentHello), fs.AtomicWriteOptions{SyncDir: true, Perm: 0o600})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if string(got) != testContentHello {
		t.Fatalf("content=%q, want %q", string(got), testContentHello)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	if got, want := info.Mode().Perm(), os.FileMode(0o600); got != want {
		t.Fatalf("perm=%v, want=%v", got, want)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("dir has %d entries, want 1", len(entries))
	}
}

func Test_AtomicWriter_Write_Keeps_Original_When_Rename_Fails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "final.txt")

	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	chaos := fs.NewChaos(fs.NewReal(), 1, fs.ChaosConfig{RenameFailRate: 1})
	writer := fs.NewAtomicWriter(chaos)

	err := writer.Write(path, strings.NewReader(testContentHello), fs.AtomicWriteOptions{Perm: 0o644})
	if !fs.IsChaosErr(err) {
		t.Fatalf("Write: err=%v, want injected rename failure", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if string(got) != "old" {
		t.Fatalf("content=%q, want %q", string(got), "old")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("dir has %d entries, want 1 (temp file not cleaned up)", len(entries))
	}
}

func Test_AtomicWriter_Write_Returns_Error_When_Perm_Is_Zero(t *testing.T) {
	t.Parallel()

	writer := fs.NewAtomicWriter(fs.NewMemory())

	err := writer.Write("/f.txt", strings.NewReader("x"), fs.AtomicWriteOptions{})
	if err == nil || errors.Is(err, fs.ErrAtomicWriteDirSync) {
		t.Fatalf("Write: err=%v, want perm validation error", err)
	}
}
