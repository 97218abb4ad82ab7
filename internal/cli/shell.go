package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"
)

// prompter reads one command line at a time.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// lineReader serves scripted input, e.g. a pipe or a test.
type lineReader struct {
	sc *bufio.Scanner
}

func (l lineReader) Prompt(string) (string, error) {
	if l.sc.Scan() {
		return l.sc.Text(), nil
	}

	if err := l.sc.Err(); err != nil {
		return "", err
	}

	return "", io.EOF
}

func (lineReader) AppendHistory(string) {}
func (lineReader) Close() error         { return nil }

// ShellCmd returns the interactive shell command. cmds are the commands
// available inside the shell.
func ShellCmd(a *app, cmds []*Command) *Command {
	return &Command{
		Flags: flag.NewFlagSet("shell", flag.ContinueOnError),
		Usage: "shell",
		Short: "Run commands interactively",
		Long: "Read commands line by line and run them like \"fsx <command>\".\n" +
			"Line editing and history are available on a terminal.\n" +
			"Type 'help' for commands, 'exit' to leave.",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			p := a.newPrompter(o, cmds)
			defer a.saveHistory(p)

			return runShell(ctx, o, p, cmds)
		},
	}
}

func (a *app) newPrompter(o *IO, cmds []*Command) prompter {
	if f, ok := o.in.(*os.File); !ok || f != os.Stdin || !liner.TerminalSupported() {
		return lineReader{sc: bufio.NewScanner(o.Stdin())}
	}

	l := liner.NewLiner()
	l.SetCtrlCAborts(true)
	l.SetCompleter(func(line string) []string {
		var out []string

		for _, c := range cmds {
			if strings.HasPrefix(c.Name(), line) {
				out = append(out, c.Name())
			}
		}

		return out
	})

	if a.cfg.HistoryFile != "" {
		if f, err := os.Open(a.cfg.HistoryFile); err == nil {
			_, _ = l.ReadHistory(f)
			_ = f.Close()
		}
	}

	return l
}

func (a *app) saveHistory(p prompter) {
	defer func() { _ = p.Close() }()

	l, ok := p.(*liner.State)
	if !ok || a.cfg.HistoryFile == "" {
		return
	}

	f, err := os.Create(a.cfg.HistoryFile)
	if err != nil {
		a.log.Warn("saving shell history", "path", a.cfg.HistoryFile, "err", err)

		return
	}

	defer func() { _ = f.Close() }()

	if _, err := l.WriteHistory(f); err != nil {
		a.log.Warn("saving shell history", "path", a.cfg.HistoryFile, "err", err)
	}
}

func runShell(ctx context.Context, o *IO, p prompter, cmds []*Command) error {
	for ctx.Err() == nil {
		line, err := p.Prompt("fsx> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		args, err := splitLine(line)
		if err != nil {
			o.ErrPrintln("error:", err)

			continue
		}

		if len(args) == 0 {
			continue
		}

		p.AppendHistory(line)

		switch args[0] {
		case "exit", "quit", "q":
			return nil
		case "help", "?":
			for _, c := range cmds {
				if c.Name() != "shell" {
					o.Println(c.HelpLine())
				}
			}

			continue
		case "shell":
			o.ErrPrintln("error: already in a shell")

			continue
		}

		cmd, ok := lookup(cmds, args[0])
		if !ok {
			o.ErrPrintln("error: unknown command:", args[0])

			continue
		}

		cmd.Reset()
		cmd.Run(ctx, NewIO(nil, o.out, o.errOut), args[1:])
	}

	return nil
}

var errUnterminatedQuote = errors.New("unterminated quote")

// splitLine splits on whitespace, honouring single and double quotes.
func splitLine(line string) ([]string, error) {
	var (
		args  []string
		cur   strings.Builder
		quote rune
		inArg bool
	)

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()

				inArg = false
			}
		default:
			cur.WriteRune(r)

			inArg = true
		}
	}

	if quote != 0 {
		return nil, errUnterminatedQuote
	}

	if inArg {
		args = append(args, cur.String())
	}

	return args, nil
}
