package cli_test

import (
	"strings"
	"testing"

	"github.com/calvinalkan/filesys/internal/cli"
	"github.com/calvinalkan/filesys/internal/testutil"
	"github.com/calvinalkan/filesys/pkg/fs"
)

func fixtureCLI(t *testing.T) (*cli.CLI, string) {
	t.Helper()

	c := cli.NewCLI(t)
	root := testutil.Fixture(t, fs.NewReal(), c.Path("files"))

	return c, root
}

func Test_Ls_Filters(t *testing.T) {
	t.Parallel()

	c, _ := fixtureCLI(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "all", args: nil, want: []string{"a.txt", "b.txt", "c.sql", "dangohiyoko.png", "neko.jpg", "piyopiyo.gif", "x", "y", "z"}},
		{name: "ext", args: []string{"--ext", "txt"}, want: []string{"a.txt", "b.txt"}},
		{name: "dirs", args: []string{"--dirs"}, want: []string{"x", "y", "z"}},
		{name: "files", args: []string{"--files"}, want: []string{"a.txt", "b.txt", "c.sql", "dangohiyoko.png", "neko.jpg", "piyopiyo.gif"}},
		{name: "images", args: []string{"--images"}, want: []string{"dangohiyoko.png", "neko.jpg", "piyopiyo.gif"}},
		{name: "image type", args: []string{"--image-type", "png,gif"}, want: []string{"dangohiyoko.png", "piyopiyo.gif"}},
		{name: "glob", args: []string{"--glob", "*.{sql,jpg}"}, want: []string{"c.sql", "neko.jpg"}},
		{name: "regex", args: []string{"--regex", "^[ab]\\."}, want: []string{"a.txt", "b.txt"}},
		{name: "or combined", args: []string{"--ext", "sql", "--dirs"}, want: []string{"c.sql", "x", "y", "z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"ls"}, tt.args...)
			args = append(args, "files")

			stdout, stderr, code := c.Run(args...)
			if code != 0 {
				t.Fatalf("ls %v: exitCode=%d stderr=%s", tt.args, code, stderr)
			}

			if got, want := stdout, strings.Join(tt.want, "\n")+"\n"; got != want {
				t.Fatalf("ls %v:\n%s\nwant:\n%s", tt.args, got, want)
			}
		})
	}
}

func Test_Ls_Long_Shows_Type_And_Size(t *testing.T) {
	t.Parallel()

	c, _ := fixtureCLI(t)
	stdout := c.MustRun("ls", "-l", "--ext", "sql", "files")

	cli.AssertContains(t, stdout, "file")
	cli.AssertContains(t, stdout, " 10 c.sql")

	stdout = c.MustRun("ls", "-l", "--dirs", "files")
	cli.AssertContains(t, stdout, "dir")
}

func Test_Ls_Defaults_To_Work_Directory(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("only.txt", "")

	if got, want := c.MustRun("ls"), "only.txt"; got != want {
		t.Fatalf("stdout=%q, want=%q", got, want)
	}
}

func Test_Ls_Errors(t *testing.T) {
	t.Parallel()

	c, _ := fixtureCLI(t)

	cli.AssertContains(t, c.MustFail("ls", "missing"), "no such file or directory")
	cli.AssertContains(t, c.MustFail("ls", "files/a.txt"), "not a directory")
	cli.AssertContains(t, c.MustFail("ls", "--glob", "[", "files"), "invalid --glob")
	cli.AssertContains(t, c.MustFail("ls", "--regex", "(", "files"), "invalid --regex")
	cli.AssertContains(t, c.MustFail("ls", "--image-type", "svg", "files"), "unknown image type")
}
