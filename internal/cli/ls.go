package cli

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/filesys/pkg/filesys"
	"github.com/calvinalkan/filesys/pkg/filesys/filter"
)

// LsCmd returns the ls command.
func LsCmd(a *app) *Command {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.String("ext", "", "Regular files with extension `e`")
	fs.Bool("dirs", false, "Directories")
	fs.Bool("files", false, "Regular files")
	fs.Bool("images", false, "Files whose header identifies an image")
	fs.String("image-type", "", "Restrict --images to comma separated `types` (png,jpg,gif,...)")
	fs.String("glob", "", "Names matching glob `pattern`")
	fs.String("regex", "", "Names matching regular expression `re`")
	fs.BoolP("long", "l", false, "Show type and size")

	return &Command{
		Flags: fs,
		Usage: "ls [flags] [dir]",
		Short: "List directory entries",
		Long: "List the entries of dir (default: work directory) sorted by name.\n" +
			"Filter flags are OR-combined; without any, every entry is listed.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execLs(o, a, fs, args)
		},
	}
}

func execLs(o *IO, a *app, fs *flag.FlagSet, args []string) error {
	if err := wantArgs(args, 0, 1); err != nil {
		return err
	}

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	accept, err := lsFilter(fs)
	if err != nil {
		return err
	}

	files, err := a.file(dir).ListFiles(accept)
	if err != nil {
		return err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	long, _ := fs.GetBool("long")

	for _, f := range files {
		if !long {
			o.Println(f.Name())

			continue
		}

		typ, err := f.Type()
		if err != nil {
			o.Warn("%s: %v", f.Name(), err)

			continue
		}

		size, _ := f.Size()
		o.Printf("%-4s %10d %s\n", typ, size, f.Name())
	}

	return nil
}

// lsFilter builds the OR of the filter flags. It returns nil when no
// filter flag is set.
func lsFilter(fs *flag.FlagSet) (filesys.Filter, error) {
	var filters []filesys.Filter

	if ext, _ := fs.GetString("ext"); ext != "" {
		filters = append(filters, filter.Extension(ext))
	}

	if dirs, _ := fs.GetBool("dirs"); dirs {
		filters = append(filters, filter.Dir())
	}

	if files, _ := fs.GetBool("files"); files {
		filters = append(filters, filter.Regular())
	}

	images, _ := fs.GetBool("images")
	imageTypes, _ := fs.GetString("image-type")

	if images || imageTypes != "" {
		var types []filter.ImageType

		for name := range strings.SplitSeq(imageTypes, ",") {
			if name = strings.TrimSpace(name); name == "" {
				continue
			}

			t, err := filter.ParseImageType(name)
			if err != nil {
				return nil, err
			}

			types = append(types, t)
		}

		filters = append(filters, filter.Image(types...))
	}

	if pattern, _ := fs.GetString("glob"); pattern != "" {
		g, err := filter.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid --glob: %w", err)
		}

		filters = append(filters, g)
	}

	if expr, _ := fs.GetString("regex"); expr != "" {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid --regex: %w", err)
		}

		filters = append(filters, filter.Regex(re))
	}

	if len(filters) == 0 {
		return nil, nil
	}

	return filter.Any(filters...), nil
}
