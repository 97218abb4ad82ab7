package filesys_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/calvinalkan/filesys/internal/testutil"
	"github.com/calvinalkan/filesys/pkg/filesys"
	"github.com/calvinalkan/filesys/pkg/fs"
)

func Test_Copy_Checks_Preconditions_In_Order(t *testing.T) {
	t.Parallel()

	sys := memSystem()
	root := sys.File(testutil.Fixture(t, sys.FS(), "/files"))
	a := root.Child("a.txt")

	if err := filesys.Copy(root.Child("x"), root.Child("copy")); !errors.Is(err, filesys.ErrNotFile) {
		t.Fatalf("Copy(dir): err=%v, want %v", err, filesys.ErrNotFile)
	}

	if err := filesys.Copy(root.Child("missing"), root.Child("copy")); !errors.Is(err, filesys.ErrNotFile) {
		t.Fatalf("Copy(missing): err=%v, want %v", err, filesys.ErrNotFile)
	}

	if err := filesys.Copy(a, root.Child("nodir").Child("a.txt")); !errors.Is(err, filesys.ErrNotDirectory) {
		t.Fatalf("Copy(into missing dir): err=%v, want %v", err, filesys.ErrNotDirectory)
	}

	if err := filesys.Copy(a, root.Child("b.txt").Child("a.txt")); !errors.Is(err, filesys.ErrNotDirectory) {
		t.Fatalf("Copy(into file): err=%v, want %v", err, filesys.ErrNotDirectory)
	}
}

func Test_Copy_Returns_ErrNotReadable_When_Source_Denies_Read(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 {
		t.Skip("root bypasses permission bits")
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "secret.txt")
	testutil.WriteFile(t, src, "x")

	if err := os.Chmod(src, 0o200); err != nil {
		t.Fatalf("Chmod: %v", err)
	}

	err := filesys.Copy(filesys.NewFile(src), filesys.NewFile(filepath.Join(dir, "copy.txt")))
	if !errors.Is(err, filesys.ErrNotReadable) {
		t.Fatalf("Copy: err=%v, want %v", err, filesys.ErrNotReadable)
	}
}

func Test_Copy_Duplicates_Content_And_Mode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "run.sh")
	testutil.WriteFile(t, src, "#!/bin/sh\n")

	if err := os.Chmod(src, 0o750); err != nil {
		t.Fatalf("Chmod: %v", err)
	}

	dst := filesys.NewFile(filepath.Join(dir, "copy.sh"))

	if err := filesys.Copy(filesys.NewFile(src), dst); err != nil {
		t.Fatalf("Copy: %v", err)
	}

	assertContent(t, dst, "#!/bin/sh\n")

	perms, err := dst.Perms()
	if err != nil {
		t.Fatalf("Perms: %v", err)
	}

	if got, want := perms.Perm(), os.FileMode(0o750); got != want {
		t.Fatalf("perm=%v, want=%v", got, want)
	}

	if !filesys.NewFile(src).Exists() {
		t.Fatal("Copy removed the source")
	}
}

func Test_Copy_And_Move_Keep_Source_When_Destination_Is_Same_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	f, err := filesys.NewFile(filepath.Join(dir, "a.txt")).Put("precious")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := filesys.Copy(f, f); !errors.Is(err, filesys.ErrCopy) {
		t.Fatalf("Copy(f, f): err=%v, want %v", err, filesys.ErrCopy)
	}

	dotted := filesys.NewFile(filepath.Join(dir, ".", "a.txt"))
	if err := filesys.Copy(f, dotted); !errors.Is(err, filesys.ErrCopy) {
		t.Fatalf("Copy(f, ./f): err=%v, want %v", err, filesys.ErrCopy)
	}

	link := filepath.Join(dir, "hard.txt")
	if err := os.Link(f.Path(), link); err != nil {
		t.Fatalf("link: %v", err)
	}

	if err := filesys.Copy(filesys.NewFile(link), f); !errors.Is(err, filesys.ErrCopy) {
		t.Fatalf("Copy(hardlink, f): err=%v, want %v", err, filesys.ErrCopy)
	}

	if err := filesys.Move(f, f); !errors.Is(err, filesys.ErrCopy) {
		t.Fatalf("Move(f, f): err=%v, want %v", err, filesys.ErrCopy)
	}

	assertContent(t, f, "precious")

	mem, err := memSystem().File("/m.txt").Put("precious")
	if err != nil {
		t.Fatalf("Put(memory): %v", err)
	}

	if err := filesys.Copy(mem, mem.Parent().Child("m.txt")); !errors.Is(err, filesys.ErrCopy) {
		t.Fatalf("Copy(memory f, f): err=%v, want %v", err, filesys.ErrCopy)
	}

	assertContent(t, mem, "precious")
}

func Test_Move_Renames_Within_Backend_And_Copies_Across_Backends(t *testing.T) {
	t.Parallel()

	mem := memSystem()

	src, err := mem.File("/a.txt").Put("payload")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	moved := mem.File("/b.txt")
	if err := filesys.Move(src, moved); err != nil {
		t.Fatalf("Move: %v", err)
	}

	if src.Exists() {
		t.Fatal("source still exists after Move")
	}

	assertContent(t, moved, "payload")

	disk := filesys.NewFile(filepath.Join(t.TempDir(), "b.txt"))
	if err := filesys.Move(moved, disk); err != nil {
		t.Fatalf("Move(memory -> disk): %v", err)
	}

	if moved.Exists() {
		t.Fatal("memory source still exists after cross-backend Move")
	}

	assertContent(t, disk, "payload")
}

func Test_OutputFile_Terminates_Every_Line(t *testing.T) {
	t.Parallel()

	sys := filesys.New(filesys.Options{FS: memSystem().FS(), LineEnding: "\r\n"})
	f := sys.File("/out.txt")

	if err := filesys.OutputFile(f, []string{"a", "b"}); err != nil {
		t.Fatalf("OutputFile: %v", err)
	}

	assertContent(t, f, "a\r\nb\r\n")

	err := filesys.OutputFile(sys.File("/missing/out.txt"), []string{"a"})
	if !errors.Is(err, filesys.ErrOpen) {
		t.Fatalf("OutputFile(missing dir): err=%v, want %v", err, filesys.ErrOpen)
	}
}

func Test_OutputFile_Returns_ErrOutput_When_Buffered_Write_Fails(t *testing.T) {
	t.Parallel()

	chaos := fs.NewChaos(fs.NewMemory(), 1, fs.ChaosConfig{WriteFailRate: 1})
	sys := filesys.New(filesys.Options{FS: chaos, Separator: "/"})

	err := filesys.OutputFile(sys.File("/out.txt"), []string{"a", "b"})
	if !errors.Is(err, filesys.ErrOutput) || !fs.IsChaosErr(err) {
		t.Fatalf("OutputFile: err=%v, want ErrOutput wrapping injected failure", err)
	}

	if kind, _ := filesys.KindOf(err); kind != filesys.KindOutput {
		t.Fatalf("KindOf=%v, want %v", kind, filesys.KindOutput)
	}
}
