package cli

import (
	"context"
	"errors"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/filesys/pkg/filesys"
)

// MkdirCmd returns the mkdir command.
func MkdirCmd(a *app) *Command {
	fs := flag.NewFlagSet("mkdir", flag.ContinueOnError)
	fs.StringP("mode", "m", "", "Octal `mode` for created directories (default from config)")

	return &Command{
		Flags: fs,
		Usage: "mkdir [-m mode] <path>...",
		Short: "Create directories and missing parents",
		Exec: func(_ context.Context, _ *IO, args []string) error {
			if err := wantArgs(args, 1, -1); err != nil {
				return err
			}

			mode := a.sys.DirMode()

			if s, _ := fs.GetString("mode"); s != "" {
				var err error

				mode, err = parseMode(s)
				if err != nil {
					return err
				}
			}

			for _, path := range args {
				if _, err := a.file(path).MkdirMode(mode); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

// MkfileCmd returns the mkfile command.
func MkfileCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("mkfile", flag.ContinueOnError),
		Usage: "mkfile <path> [text...]",
		Short: "Create a file and its parent directory",
		Exec: func(_ context.Context, _ *IO, args []string) error {
			if err := wantArgs(args, 1, -1); err != nil {
				return err
			}

			_, err := a.file(args[0]).Mkfile(strings.Join(args[1:], " "))

			return err
		},
	}
}

// TouchCmd returns the touch command.
func TouchCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("touch", flag.ContinueOnError),
		Usage: "touch <path>...",
		Short: "Create files or update their times",
		Exec: func(_ context.Context, _ *IO, args []string) error {
			if err := wantArgs(args, 1, -1); err != nil {
				return err
			}

			for _, path := range args {
				if _, err := a.file(path).Touch(); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

// RmCmd returns the rm command.
func RmCmd(a *app) *Command {
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)
	fs.BoolP("recursive", "r", false, "Remove directories and their contents")

	return &Command{
		Flags: fs,
		Usage: "rm [-r] <path>...",
		Short: "Remove files or directories",
		Long: "Remove files and empty directories. With -r, directories are removed with\n" +
			"their contents; symlinks are removed, never followed. Missing paths are ignored.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if err := wantArgs(args, 1, -1); err != nil {
				return err
			}

			recursive, _ := fs.GetBool("recursive")

			for _, path := range args {
				f := a.file(path)

				var err error
				if recursive {
					_, err = f.DeleteAll()
				} else {
					_, err = f.Delete()
				}

				if err != nil {
					for _, e := range unjoin(err) {
						o.Warn("%v", e)
					}
				}
			}

			return nil
		},
	}
}

// unjoin splits an errors.Join result into its parts.
func unjoin(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}

	return []error{err}
}

// MvCmd returns the mv command.
func MvCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("mv", flag.ContinueOnError),
		Usage: "mv <src> <dst>",
		Short: "Move a file",
		Long:  "Move a regular file. Falls back to copy and delete across devices.",
		Exec: func(_ context.Context, _ *IO, args []string) error {
			return transfer(a, args, filesys.Move)
		},
	}
}

// CpCmd returns the cp command.
func CpCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("cp", flag.ContinueOnError),
		Usage: "cp <src> <dst>",
		Short: "Copy a file",
		Long:  "Copy a regular file, keeping its permission bits.",
		Exec: func(_ context.Context, _ *IO, args []string) error {
			return transfer(a, args, filesys.Copy)
		},
	}
}

func transfer(a *app, args []string, op func(src, dst filesys.File) error) error {
	if err := wantArgs(args, 2, 2); err != nil {
		return err
	}

	src := a.file(args[0])

	dst := a.file(args[1])
	if dst.IsDir() {
		dst = dst.Child(src.Name())
	}

	return op(src, dst)
}
