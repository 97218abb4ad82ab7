package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/filesys/pkg/filesys"
)

// WatchCmd returns the watch command.
func WatchCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("watch", flag.ContinueOnError),
		Usage: "watch <path>",
		Short: "Print filesystem events until interrupted",
		Long:  "Print one \"<OP> <path>\" line per event on path (a file or directory) until interrupted.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if err := wantArgs(args, 1, 1); err != nil {
				return err
			}

			return a.file(args[0]).Watch(ctx, func(ev filesys.Event) {
				o.Printf("%s %s\n", ev.Op, ev.File.Path())
			})
		},
	}
}
