package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/calvinalkan/filesys/internal/cli"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func Test_Watch_Prints_Events_Until_Signal(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	target := filepath.Join(c.Dir, "new.txt")

	var out, errOut syncBuffer

	sigCh := make(chan os.Signal, 1)
	done := make(chan int, 1)

	go func() {
		done <- cli.Run(nil, &out, &errOut, []string{"fsx", "--cwd", c.Dir, "watch", "."}, c.Env, sigCh)
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()

	// The watcher starts asynchronously; keep creating the file until it shows up.
	for !strings.Contains(out.String(), "CREATE "+target) {
		select {
		case <-tick.C:
			_ = os.Remove(target)

			if err := os.WriteFile(target, []byte("x"), 0o600); err != nil {
				t.Fatalf("write: %v", err)
			}
		case code := <-done:
			t.Fatalf("watch exited early: code=%d stderr=%s", code, errOut.String())
		case <-deadline:
			t.Fatalf("no create event within 5s; stdout=%q", out.String())
		}
	}

	sigCh <- syscall.SIGINT

	select {
	case code := <-done:
		if code != 0 {
			t.Fatalf("exitCode=%d stderr=%s", code, errOut.String())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after signal")
	}
}
