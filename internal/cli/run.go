package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/calvinalkan/filesys/pkg/filesys"
	"github.com/calvinalkan/filesys/pkg/fs"
)

const (
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

// Run is the main entry point. Returns exit code.
//
// A value on sigCh cancels the context of the running command; commands
// that block, such as watch and shell, return when it is done.
func Run(in io.Reader, out, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	if len(args) == 0 {
		args = []string{"fsx"}
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	cfg, err := LoadConfig(LoadConfigInput{
		WorkDirOverride: flags.workDir,
		ConfigPath:      flags.configPath,
		Env:             env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	a := newApp(cfg, errOut)
	cmds := a.commands()

	if len(flags.remaining) == 0 || flags.remaining[0] == "-h" || flags.remaining[0] == helpFlag {
		printUsage(out, cmds)

		return 0
	}

	name := flags.remaining[0]

	cmd, ok := lookup(cmds, name)
	if !ok {
		fprintln(errOut, "error: unknown command:", name)
		printUsage(errOut, cmds)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	return cmd.Run(ctx, NewIO(in, out, errOut), flags.remaining[1:])
}

// app carries the resolved configuration into command implementations.
type app struct {
	cfg Config
	sys *filesys.System
	log *slog.Logger
}

func newApp(cfg Config, logOut io.Writer) *app {
	log := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.level}))

	return &app{
		cfg: cfg,
		sys: filesys.New(filesys.Options{
			FS:         fs.NewReal(),
			DirMode:    cfg.dirMode,
			FileMode:   cfg.fileMode,
			LineEnding: cfg.eol,
			Logger:     log,
		}),
		log: log,
	}
}

// file resolves path against the effective work directory.
func (a *app) file(path string) filesys.File {
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.cfg.EffectiveCwd, path)
	}

	return a.sys.File(path)
}

// commands returns every command in help order. Each call returns fresh
// flag sets.
func (a *app) commands() []*Command {
	cmds := []*Command{
		CatCmd(a),
		PutCmd(a),
		LsCmd(a),
		HashCmd(a),
		StatCmd(a),
		MkdirCmd(a),
		MkfileCmd(a),
		TouchCmd(a),
		RmCmd(a),
		MvCmd(a),
		CpCmd(a),
		IniCmd(a),
		WatchCmd(a),
		PrintConfigCmd(&a.cfg),
	}

	return append(cmds, ShellCmd(a, cmds))
}

func lookup(cmds []*Command, name string) (*Command, bool) {
	for _, c := range cmds {
		if c.Name() == name {
			return c, true
		}
	}

	return nil, false
}

type globalFlags struct {
	workDir    string
	configPath string
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	if arg == "-C" || arg == "--cwd" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
		}

		flags.workDir = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--cwd="); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	if after, ok := strings.CutPrefix(arg, "-C"); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	if arg == "-c" || arg == "--config" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
		}

		flags.configPath = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--config="); ok {
		flags.configPath = after

		return consumedOne, nil
	}

	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", errUnknownFlag, arg)
	}

	return consumedNone, nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, cmds []*Command) {
	fprintln(w, `fsx - filesystem toolbox

Usage: fsx [options] <command> [args]

Options:
  -C, --cwd <dir>    Run as if started in <dir>
  -c, --config       Use specified config file

Commands:`)

	for _, c := range cmds {
		fprintln(w, c.HelpLine())
	}
}
