package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/filesys/pkg/filesys"
	"github.com/calvinalkan/filesys/pkg/filesys/ini"
)

var errNoSuchKey = errors.New("not found")

// CatCmd returns the cat command.
func CatCmd(a *app) *Command {
	fs := flag.NewFlagSet("cat", flag.ContinueOnError)
	fs.IntP("lines", "n", 0, "Print only the first N lines")
	fs.Bool("lock", false, "Hold a shared lock while reading")

	return &Command{
		Flags: fs,
		Usage: "cat [flags] <path>...",
		Short: "Print file content",
		Long:  "Print the content of each file in order. With --lock, waits for writers holding an exclusive lock.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execCat(o, a, fs, args)
		},
	}
}

func execCat(o *IO, a *app, fs *flag.FlagSet, args []string) error {
	if err := wantArgs(args, 1, -1); err != nil {
		return err
	}

	limit, _ := fs.GetInt("lines")
	if limit < 0 {
		return errors.New("--lines must be non-negative")
	}

	lock, _ := fs.GetBool("lock")

	for _, path := range args {
		err := a.file(path).WithReader(func(r *filesys.Reader) error {
			if lock {
				if err := r.Lock(); err != nil {
					return err
				}
			}

			for n := 0; limit == 0 || n < limit; n++ {
				line, err := r.ReadLine()
				if errors.Is(err, io.EOF) {
					return nil
				}

				if err != nil {
					return err
				}

				o.Printf("%s", line)
			}

			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// PutCmd returns the put command.
func PutCmd(a *app) *Command {
	fs := flag.NewFlagSet("put", flag.ContinueOnError)
	fs.Bool("append", false, "Append instead of replacing")
	fs.Bool("lock", false, "Hold an exclusive lock while writing")
	fs.Bool("atomic", false, "Write a temp file and rename it into place")

	return &Command{
		Flags: fs,
		Usage: "put [flags] <path> [text...]",
		Short: "Write text or stdin to a file",
		Long: "Write the text arguments, joined by spaces, to the file. Without text, stdin is copied.\n" +
			"--atomic cannot be combined with --lock or --append.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execPut(o, a, fs, args)
		},
	}
}

func execPut(o *IO, a *app, fs *flag.FlagSet, args []string) error {
	if err := wantArgs(args, 1, -1); err != nil {
		return err
	}

	appendMode, _ := fs.GetBool("append")
	lock, _ := fs.GetBool("lock")
	atomic, _ := fs.GetBool("atomic")

	if atomic && appendMode {
		return errors.New("--atomic and --append cannot be used together")
	}

	f := a.file(args[0])

	var src io.Reader = o.Stdin()
	if len(args) > 1 {
		src = strings.NewReader(strings.Join(args[1:], " "))
	}

	if !appendMode {
		_, err := f.PutWith(src, filesys.PutOptions{ExclusiveLock: lock, Atomic: atomic})

		return err
	}

	if !lock {
		_, err := f.Append(src)

		return err
	}

	w, err := f.OpenForAppend()
	if err != nil {
		return err
	}

	if err := w.Lock(); err != nil {
		return errors.Join(err, w.Close())
	}

	if _, err := io.Copy(w, src); err != nil {
		return errors.Join(err, w.Close())
	}

	return w.Close()
}

// IniCmd returns the ini command.
func IniCmd(a *app) *Command {
	fs := flag.NewFlagSet("ini", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "ini get|set <path> [section [key [value]]]",
		Short: "Read or update an INI file",
		Long: "get prints the whole file, one section, or one value.\n" +
			"set <path> <section> <key> <value> stores a value, creating the file when missing.\n" +
			"Keys outside any section live in section DEFAULT.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execIni(o, a, args)
		},
	}
}

func execIni(o *IO, a *app, args []string) error {
	if err := wantArgs(args, 2, 5); err != nil {
		return err
	}

	f := a.file(args[1])

	switch args[0] {
	case "get":
		if len(args) > 4 {
			return errUsage
		}

		return iniGet(o, f, args[2:])
	case "set":
		if len(args) != 5 {
			return errUsage
		}

		return iniSet(a, f, args[2], args[3], args[4])
	default:
		return fmt.Errorf("unknown ini subcommand: %s", args[0])
	}
}

func iniSet(a *app, f filesys.File, section, key, value string) error {
	var data ini.Data

	if f.Exists() {
		var err error

		data, err = ini.Load(f)
		if err != nil {
			return err
		}
	}

	data = data.Set(section, key, value)

	return ini.Write(f, data, ini.WithLineEnding(a.sys.LineEnding()))
}

func iniGet(o *IO, f filesys.File, path []string) error {
	data, err := ini.Load(f)
	if err != nil {
		return err
	}

	if len(path) == 0 {
		text, err := ini.Render(data, "\n")
		if err != nil {
			return err
		}

		o.Printf("%s", text)

		return nil
	}

	section, ok := data.Section(path[0])
	if !ok {
		return fmt.Errorf("%w: [%s]", errNoSuchKey, path[0])
	}

	if len(path) == 1 {
		text, err := ini.Render(ini.Data{section}, "\n")
		if err != nil {
			return err
		}

		o.Printf("%s", text)

		return nil
	}

	v, ok := section.Get(path[1])
	if !ok {
		return fmt.Errorf("%w: [%s] %s", errNoSuchKey, path[0], path[1])
	}

	o.Println(v)

	return nil
}
