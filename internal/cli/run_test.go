package cli_test

import (
	"bytes"
	"testing"

	"github.com/calvinalkan/filesys/internal/cli"
)

func Test_Usage_Lists_Commands_When_Invoked_Without_Command(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun()

	cli.AssertContains(t, stdout, "Usage: fsx [options] <command> [args]")

	for _, name := range []string{"cat", "put", "ls", "hash", "stat", "mkdir", "mkfile", "touch", "rm", "mv", "cp", "ini", "watch", "shell", "print-config"} {
		cli.AssertContains(t, stdout, "  "+name+" ")
	}
}

func Test_Help_Flag_Prints_Usage(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	for _, arg := range []string{"-h", "--help"} {
		cli.AssertContains(t, c.MustRun(arg), "Commands:")
	}
}

func Test_Invalid_Global_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("--invalid-flag", "ls")

	cli.AssertContains(t, stderr, "unknown flag")
	cli.AssertContains(t, stderr, "--invalid-flag")
}

func Test_Global_Flag_Without_Value_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	var out, errOut bytes.Buffer

	code := cli.Run(nil, &out, &errOut, []string{"fsx", "-c"}, c.Env, nil)
	if got, want := code, 1; got != want {
		t.Fatalf("exitCode=%d, want=%d", got, want)
	}

	cli.AssertContains(t, errOut.String(), "flag requires an argument: -c")
}

func Test_Unknown_Command_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("frobnicate")

	cli.AssertContains(t, stderr, "unknown command: frobnicate")
	cli.AssertContains(t, stderr, "Commands:")
}

func Test_Command_Help_Prints_Flags(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("put", "--help")

	cli.AssertContains(t, stdout, "Usage: fsx put [flags] <path> [text...]")
	cli.AssertContains(t, stdout, "--atomic")
	cli.AssertContains(t, stdout, "--append")
}

func Test_Command_Rejects_Unknown_Flag(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, stderr, code := c.Run("cat", "--bogus", "a.txt")

	if got, want := code, 1; got != want {
		t.Fatalf("exitCode=%d, want=%d", got, want)
	}

	cli.AssertContains(t, stderr, "error: unknown flag: --bogus")
	cli.AssertContains(t, stdout, "Usage: fsx cat")
}

func Test_Command_Rejects_Wrong_Argument_Count(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	for _, args := range [][]string{{"cat"}, {"mv", "a"}, {"stat", "a", "b"}, {"ini", "get"}} {
		stderr := c.MustFail(args...)
		cli.AssertContains(t, stderr, "wrong number of arguments")
	}
}

func Test_Cwd_Flag_Forms_Resolve_Relative_Paths(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("sub/a.txt", "hello\n")

	var out, errOut bytes.Buffer

	for _, args := range [][]string{
		{"fsx", "-C", c.Path("sub"), "cat", "a.txt"},
		{"fsx", "-C" + c.Path("sub"), "cat", "a.txt"},
		{"fsx", "--cwd=" + c.Path("sub"), "cat", "a.txt"},
	} {
		out.Reset()
		errOut.Reset()

		if code := cli.Run(nil, &out, &errOut, args, c.Env, nil); code != 0 {
			t.Fatalf("%v: exitCode=%d stderr=%s", args, code, errOut.String())
		}

		if got, want := out.String(), "hello\n"; got != want {
			t.Fatalf("%v: stdout=%q, want=%q", args, got, want)
		}
	}
}
