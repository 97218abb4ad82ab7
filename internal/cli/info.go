package cli

import (
	"context"
	"errors"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/filesys/pkg/filesys"
)

// HashCmd returns the hash command.
func HashCmd(a *app) *Command {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	fs.StringP("algo", "a", "", "Digest `algorithm` (default from config)")
	fs.Bool("list", false, "List supported algorithms")

	return &Command{
		Flags: fs,
		Usage: "hash [-a algo] <path>...",
		Short: "Print file digests",
		Long: "Print \"<digest>  <path>\" for each file. Unreadable files are reported as\n" +
			"warnings and the remaining files are still hashed.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execHash(o, a, fs, args)
		},
	}
}

func execHash(o *IO, a *app, fs *flag.FlagSet, args []string) error {
	if list, _ := fs.GetBool("list"); list {
		for _, algo := range filesys.HashAlgos() {
			o.Println(algo)
		}

		return nil
	}

	if err := wantArgs(args, 1, -1); err != nil {
		return err
	}

	algo := a.cfg.hash

	if name, _ := fs.GetString("algo"); name != "" {
		var err error

		algo, err = filesys.ParseHashAlgo(name)
		if err != nil {
			return err
		}
	}

	for _, path := range args {
		sum, err := a.file(path).Hash(algo)
		if err != nil {
			o.Warn("%v", err)

			continue
		}

		o.Printf("%s  %s\n", sum, path)
	}

	return nil
}

// StatCmd returns the stat command.
func StatCmd(a *app) *Command {
	fs := flag.NewFlagSet("stat", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "stat <path>",
		Short: "Show file metadata",
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execStat(o, a, args)
		},
	}
}

func execStat(o *IO, a *app, args []string) error {
	if err := wantArgs(args, 1, 1); err != nil {
		return err
	}

	f := a.file(args[0])

	typ, err := f.Type()
	if err != nil {
		return err
	}

	size, err := f.Size()
	if err != nil {
		return err
	}

	perms, err := f.Perms()
	if err != nil {
		return err
	}

	mtime, err := f.ModTime()
	if err != nil {
		return err
	}

	atime, err := f.AccessTime()
	if err != nil {
		return err
	}

	o.Println("path=" + f.Path())
	o.Println("type=" + typ)
	o.Printf("size=%d\n", size)
	o.Printf("perms=%04o\n", perms.Perm())
	o.Println("mtime=" + mtime.UTC().Format(time.RFC3339))
	o.Println("atime=" + atime.UTC().Format(time.RFC3339))

	owner, err := f.Owner()

	switch {
	case err == nil:
		o.Printf("owner=%d\n", owner)
	case errors.Is(err, filesys.ErrUnsupported):
		o.Println("owner=-")
	default:
		return err
	}

	o.Printf("readable=%t\n", f.CanRead())
	o.Printf("writable=%t\n", f.CanWrite())

	return nil
}
