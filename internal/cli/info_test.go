package cli_test

import (
	"strings"
	"testing"

	"github.com/calvinalkan/filesys/internal/cli"
	"github.com/calvinalkan/filesys/internal/testutil"
)

func Test_Hash_Uses_Config_Default_And_Flag(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("a.txt", testutil.TextA)

	if got, want := c.MustRun("hash", "a.txt"), testutil.TextASHA1+"  a.txt"; got != want {
		t.Fatalf("stdout=%q, want=%q", got, want)
	}

	if got, want := c.MustRun("hash", "-a", "md5", "a.txt"), testutil.TextAMD5+"  a.txt"; got != want {
		t.Fatalf("stdout=%q, want=%q", got, want)
	}

	c.WriteFile(".fsx.json", `{"hash": "md5"}`)

	if got, want := c.MustRun("hash", "a.txt"), testutil.TextAMD5+"  a.txt"; got != want {
		t.Fatalf("stdout=%q, want=%q", got, want)
	}
}

func Test_Hash_Warns_And_Continues_When_A_File_Fails(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("a.txt", testutil.TextA)

	stdout, stderr, code := c.Run("hash", "missing.txt", "a.txt")

	if got, want := code, 1; got != want {
		t.Fatalf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stdout, testutil.TextASHA1+"  a.txt\n"; got != want {
		t.Fatalf("stdout=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stderr, "warning: reading file failed")
	cli.AssertContains(t, stderr, "missing.txt")
}

func Test_Hash_List_And_Unknown_Algo(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout := c.MustRun("hash", "--list")
	for _, algo := range []string{"sha1", "md5", "sha256", "crc32b", "xxh64"} {
		cli.AssertContains(t, stdout, algo)
	}

	c.WriteFile("a.txt", "x")
	cli.AssertContains(t, c.MustFail("hash", "-a", "whirlpool", "a.txt"), "unknown hash algorithm")
}

func Test_Stat_Reports_Metadata(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("a.txt", testutil.TextA)

	stdout := c.MustRun("stat", "a.txt")

	for _, want := range []string{
		"path=" + c.Path("a.txt"),
		"type=file",
		"size=208",
		"perms=0600",
		"mtime=",
		"atime=",
		"owner=",
		"readable=true",
		"writable=true",
	} {
		cli.AssertContains(t, stdout, want)
	}

	if strings.Contains(stdout, "owner=-") {
		t.Fatalf("owner should be numeric on the real filesystem:\n%s", stdout)
	}

	cli.AssertContains(t, c.MustRun("stat", "."), "type=dir")
	cli.AssertContains(t, c.MustFail("stat", "missing"), "no such file or directory")
}
