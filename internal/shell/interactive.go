package shell

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"github.com/pinet-os/pinetsh/internal/vfs"
)

// Renderer styles output for a terminal
type Renderer interface {
	Write(w io.Writer, res Result) error
	Prompt(p string) string
}

// InteractiveConfig configures the REPL
type InteractiveConfig struct {
	HistoryFile  string
	HistoryLimit int
	Renderer     Renderer

	// Stdin/Stdout default to the process streams when nil
	Stdin  io.ReadCloser
	Stdout io.Writer
}

// Banner is printed when the REPL starts
var Banner = []string{
	"Minima Node Management Shell [Version 1.0.35]",
	"(c) 2024 Minima Global. All rights reserved.",
	"",
	`Type "help" for a list of commands.`,
	"",
}

const clearScreen = "\033[H\033[2J"

// Interactive starts the interactive shell mode
func (s *Shell) Interactive(cfg InteractiveConfig) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            s.prompt(cfg.Renderer),
		HistoryFile:       cfg.HistoryFile,
		HistoryLimit:      cfg.HistoryLimit,
		HistorySearchFold: true,
		AutoComplete:      s.createCompleter(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		Stdin:             cfg.Stdin,
		Stdout:            cfg.Stdout,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	out := rl.Stdout()
	for _, l := range Banner {
		fmt.Fprintln(out, l)
	}

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch strings.TrimSpace(line) {
		case "exit", "quit", "logout":
			return nil
		}

		res := s.Execute(line)
		if res.Clear {
			fmt.Fprint(out, clearScreen)
		}
		if err := s.write(cfg.Renderer, out, res); err != nil {
			s.log.Warn("failed to write output", zap.Error(err))
		}
		rl.SetPrompt(s.prompt(cfg.Renderer))
	}
}

// RunScript executes each line of script in order and writes the output to w
func (s *Shell) RunScript(script string, r Renderer, w io.Writer) error {
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if err := s.write(r, w, s.Execute(line)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Shell) prompt(r Renderer) string {
	if r == nil {
		return s.Prompt()
	}
	return r.Prompt(s.Prompt())
}

func (s *Shell) write(r Renderer, w io.Writer, res Result) error {
	if r != nil {
		return r.Write(w, res)
	}
	for _, l := range res.Lines {
		if _, err := fmt.Fprintln(w, l.Text); err != nil {
			return err
		}
	}
	return nil
}

// createCompleter creates an autocomplete function for readline
func (s *Shell) createCompleter() readline.AutoCompleter {
	names := s.Commands()

	items := make([]readline.PrefixCompleterInterface, 0, len(names))
	for _, name := range names {
		switch name {
		case "cd", "ls", "cat":
			items = append(items, readline.PcItem(name, readline.PcItemDynamic(s.completePath)))
		case "sudo":
			sub := make([]readline.PrefixCompleterInterface, 0, len(names))
			for _, n := range names {
				if n != "sudo" {
					sub = append(sub, readline.PcItem(n))
				}
			}
			items = append(items, readline.PcItem(name, sub...))
		default:
			items = append(items, readline.PcItem(name))
		}
	}

	return readline.NewPrefixCompleter(items...)
}

// completePath offers the entries of the working directory
func (s *Shell) completePath(string) []string {
	dir, err := vfs.Resolve(s.tree, s.cursor.CurrentPath(), s.cursor)
	if err != nil {
		return nil
	}

	var out []string
	for _, c := range s.tree.Children(dir) {
		name := c.Name
		if c.IsDir() {
			name += "/"
		}
		out = append(out, name)
	}
	return out
}
