package filesys_test

import (
	"errors"
	"os"
	"syscall"
	"testing"

	"github.com/calvinalkan/filesys/pkg/filesys"
	"github.com/calvinalkan/filesys/pkg/fs"
)

func Test_Error_Message_Includes_Paths_Msg_And_Cause(t *testing.T) {
	t.Parallel()

	cause := &os.PathError{Op: "open", Path: "a.txt", Err: syscall.ENOENT}

	tests := []struct {
		err  *filesys.Error
		want string
	}{
		{
			err:  &filesys.Error{Kind: filesys.KindInput, Path: "a.txt", Msg: "file_get_contents failed"},
			want: "reading file failed: a.txt: file_get_contents failed",
		},
		{
			err:  &filesys.Error{Kind: filesys.KindRename, Path: "a.txt", Dest: "b.txt", Err: cause},
			want: "renaming file failed: a.txt -> b.txt: open a.txt: no such file or directory",
		},
		{
			err:  &filesys.Error{Kind: filesys.KindCopy, Path: "a", Dest: "b"},
			want: "copying file failed: a -> b",
		},
		{
			err:  &filesys.Error{Kind: filesys.KindNotReadable, Path: "secret"},
			want: "file is not readable: secret",
		},
		{
			err:  &filesys.Error{Kind: filesys.KindOperator, Path: "a.txt", Msg: "handle is closed"},
			want: "operator: a.txt: handle is closed",
		},
		{
			err:  &filesys.Error{Kind: filesys.KindInvalidArgument, Msg: "read length must be positive"},
			want: "invalid argument: read length must be positive",
		},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error()=%q, want %q", got, tt.want)
		}
	}
}

func Test_Error_Is_Matches_Kind_And_Cause(t *testing.T) {
	t.Parallel()

	err := error(&filesys.Error{Kind: filesys.KindInput, Path: "x", Err: &os.PathError{Op: "open", Path: "x", Err: syscall.ENOENT}})

	if !errors.Is(err, filesys.ErrInput) {
		t.Fatal("errors.Is(err, ErrInput)=false")
	}

	if errors.Is(err, filesys.ErrOutput) {
		t.Fatal("errors.Is(err, ErrOutput)=true")
	}

	if !errors.Is(err, os.ErrNotExist) {
		t.Fatal("errors.Is(err, os.ErrNotExist)=false")
	}

	kind, ok := filesys.KindOf(err)
	if !ok || kind != filesys.KindInput {
		t.Fatalf("KindOf=%v, %v; want %v", kind, ok, filesys.KindInput)
	}

	if _, ok := filesys.KindOf(errors.New("plain")); ok {
		t.Fatal("KindOf(plain error) reported a kind")
	}
}

func Test_Errors_From_Chaos_Backend_Surface_As_Matching_Kinds(t *testing.T) {
	t.Parallel()

	mem := fs.NewMemory()
	sys := filesys.New(filesys.Options{FS: mem})

	src, err := sys.File("/src.txt").Put("x")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	chaos := fs.NewChaos(mem, 5, fs.ChaosConfig{
		OpenFailRate:   1,
		ReadFailRate:   1,
		RenameFailRate: 1,
		MkdirFailRate:  1,
	})
	faulty := filesys.New(filesys.Options{FS: chaos})
	src = faulty.File(src.Path())

	_, err = src.Get()
	if !errors.Is(err, filesys.ErrInput) {
		t.Errorf("Get: err=%v, want %v", err, filesys.ErrInput)
	}

	_, err = src.OpenForRead()
	if !errors.Is(err, filesys.ErrOpen) {
		t.Errorf("OpenForRead: err=%v, want %v", err, filesys.ErrOpen)
	}

	_, err = src.Rename(faulty.File("/dst.txt"))
	if !errors.Is(err, filesys.ErrRename) {
		t.Errorf("Rename: err=%v, want %v", err, filesys.ErrRename)
	}

	_, err = faulty.File("/newdir").Mkdir()
	if !errors.Is(err, filesys.ErrMakeDirectory) {
		t.Errorf("Mkdir: err=%v, want %v", err, filesys.ErrMakeDirectory)
	}

	if err := filesys.Copy(src, faulty.File("/copy.txt")); !errors.Is(err, filesys.ErrCopy) {
		t.Errorf("Copy: err=%v, want %v", err, filesys.ErrCopy)
	}
}
