package filesys_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/calvinalkan/filesys/internal/testutil"
	"github.com/calvinalkan/filesys/pkg/filesys"
)

func Test_File_Watch_Reports_Create_In_Directory(t *testing.T) {
	t.Parallel()

	dir := filesys.NewFile(t.TempDir())
	target := filepath.Join(dir.Path(), "new.txt")

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	events := make(chan filesys.Event, 16)
	done := make(chan error, 1)

	go func() {
		done <- dir.Watch(ctx, func(ev filesys.Event) {
			select {
			case events <- ev:
			default:
			}
		})
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()

	// The watcher is registered asynchronously; keep touching until it sees us.
	for {
		select {
		case ev := <-events:
			if ev.File.Path() == target && ev.Op.Has(filesys.OpCreate) {
				cancel()

				if err := <-done; err != nil {
					t.Fatalf("Watch: %v", err)
				}

				return
			}
		case <-tick.C:
			testutil.WriteFile(t, target, "x")
			_, _ = filesys.NewFile(target).Delete()
		case err := <-done:
			t.Fatalf("Watch returned early: %v", err)
		case <-deadline:
			t.Fatal("no create event within 5s")
		}
	}
}

func Test_File_Watch_Returns_ErrUnsupported_When_Backend_Is_Memory(t *testing.T) {
	t.Parallel()

	err := memSystem().File("/").Watch(t.Context(), func(filesys.Event) {})
	if !errors.Is(err, filesys.ErrUnsupported) {
		t.Fatalf("Watch: err=%v, want %v", err, filesys.ErrUnsupported)
	}
}

func Test_Op_String_Lists_Set_Bits(t *testing.T) {
	t.Parallel()

	if got, want := (filesys.OpCreate | filesys.OpWrite).String(), "CREATE|WRITE"; got != want {
		t.Fatalf("String()=%q, want=%q", got, want)
	}

	if got, want := filesys.Op(0).String(), "NONE"; got != want {
		t.Fatalf("String()=%q, want=%q", got, want)
	}
}
