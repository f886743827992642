package shell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/pinet-os/pinetsh/internal/vfs"
)

// command is a registered builtin
type command struct {
	name string
	run  func(inv invocation) Result
}

func (s *Shell) registerCommands() map[string]*command {
	table := map[string]func(inv invocation) Result{
		// Filesystem
		"ls":    s.cmdLs,
		"cd":    s.cmdCd,
		"pwd":   s.cmdPwd,
		"cat":   s.cmdCat,
		"mkdir": s.cmdMkdir,
		"touch": s.cmdTouch,

		// System
		"whoami":   s.cmdWhoami,
		"uname":    s.cmdUname,
		"clear":    s.cmdClear,
		"neofetch": s.cmdNeofetch,
		"apt":      s.cmdApt,
		"apt-get":  s.cmdApt,
		"help":     s.cmdHelp,
		"top":      s.cmdTop,
		"reboot":   s.cmdReboot,

		// Node
		"minima":  s.cmdMinima,
		"cluster": s.cmdCluster,
	}

	commands := make(map[string]*command, len(table))
	for name, run := range table {
		commands[name] = &command{name: name, run: run}
	}
	return commands
}

func lines(l ...Line) Result {
	return Result{Lines: l}
}

// splitFlags separates leading "-x" options from operands
func splitFlags(args []string) (flags string, operands []string) {
	for i, a := range args {
		if a == "--" {
			return flags, append(operands, args[i+1:]...)
		}
		if len(a) > 1 && strings.HasPrefix(a, "-") {
			flags += a[1:]
			continue
		}
		operands = append(operands, a)
	}
	return flags, operands
}

func (s *Shell) cmdLs(inv invocation) Result {
	flags, operands := splitFlags(inv.args)
	long := false
	for _, f := range flags {
		switch f {
		case 'l':
			long = true
		case 'a', 'F':
		default:
			return lines(errorf("ls: invalid option -- '%c'", f))
		}
	}

	if len(operands) == 0 {
		operands = []string{"."}
	}

	var out []Line
	for i, target := range operands {
		if i > 0 {
			out = append(out, info(""))
		}
		out = append(out, s.lsOne(target, long, len(operands) > 1)...)
	}
	return Result{Lines: out}
}

// lsOne lists a single operand; titled adds a "<target>:" header for directories
func (s *Shell) lsOne(target string, long, titled bool) []Line {
	id, err := vfs.Resolve(s.tree, target, s.cursor)
	if err != nil {
		return []Line{errorf("ls: cannot access '%s': %s", target, describe(err))}
	}

	node, _ := s.tree.Node(id)
	if !node.IsDir() {
		return []Line{s.lsEntry(node, target, long)}
	}

	var out []Line
	if titled {
		out = append(out, Line{Text: target + ":", Kind: KindHeader})
	}
	for _, child := range s.tree.Children(id) {
		out = append(out, s.lsEntry(child, child.Name, long))
	}
	return out
}

func (s *Shell) lsEntry(n *vfs.Node, name string, long bool) Line {
	kind := KindInfo
	if n.IsDir() {
		name += "/"
		kind = KindHeader
	}
	if !long {
		return Line{Text: name, Kind: kind}
	}

	size := uint64(n.Size)
	if n.IsDir() {
		size = 4096
	}
	owner := s.owner(n)
	return Line{
		Text: fmt.Sprintf("%s %-6s %-6s %8s %s %s",
			n.Permissions, owner, owner, humanize.Bytes(size), n.ModTime.Format("Jan _2 15:04"), name),
		Kind: kind,
	}
}

// owner attributes everything under the home directory to the user
func (s *Shell) owner(n *vfs.Node) string {
	p := s.tree.Path(n.ID)
	home := s.cursor.Home()
	if p == home || strings.HasPrefix(p, home+"/") {
		return s.cursor.User()
	}
	return "root"
}

func (s *Shell) cmdCd(inv invocation) Result {
	if len(inv.args) > 1 {
		return lines(errorf("cd: too many arguments"))
	}
	if len(inv.args) == 0 {
		s.cursor.setPath(s.cursor.Home())
		return Result{}
	}

	target := inv.args[0]
	if target == ".." {
		s.cursor.setPath(s.cursor.parent())
		return Result{}
	}

	id, err := vfs.Resolve(s.tree, target, s.cursor)
	if err != nil {
		return lines(errorf("cd: %s: %s", target, describe(err)))
	}
	node, _ := s.tree.Node(id)
	if !node.IsDir() {
		return lines(errorf("cd: %s: %s", target, describe(vfs.ErrNotADirectory)))
	}

	s.cursor.setPath(s.tree.Path(id))
	return Result{}
}

func (s *Shell) cmdPwd(invocation) Result {
	return lines(info(s.cursor.CurrentPath()))
}

func (s *Shell) cmdCat(inv invocation) Result {
	_, operands := splitFlags(inv.args)
	if len(operands) == 0 {
		return lines(errorf("cat: missing operand"))
	}

	var out []Line
	for _, target := range operands {
		id, err := vfs.Resolve(s.tree, target, s.cursor)
		if err != nil {
			out = append(out, errorf("cat: %s: %s", target, describe(err)))
			continue
		}
		node, _ := s.tree.Node(id)
		if node.IsDir() {
			out = append(out, errorf("cat: %s: %s", target, describe(vfs.ErrIsADirectory)))
			continue
		}

		text := node.Content
		if text == "" {
			text = "(empty)"
		}
		out = append(out, info(text))
	}
	return Result{Lines: out}
}

func (s *Shell) cmdMkdir(inv invocation) Result {
	return s.create(inv, vfs.KindDir, "mkdir", "cannot create directory")
}

func (s *Shell) cmdTouch(inv invocation) Result {
	return s.create(inv, vfs.KindFile, "touch", "cannot touch")
}

// create appends one new node per operand to the working directory
func (s *Shell) create(inv invocation, kind vfs.Kind, name, verb string) Result {
	flags, operands := splitFlags(inv.args)
	if flags != "" {
		return lines(errorf("%s: invalid option -- '%c'", name, flags[0]))
	}
	if len(operands) == 0 {
		return lines(errorf("%s: missing operand", name))
	}

	var out []Line
	for _, operand := range operands {
		if err := s.createOne(kind, operand); err != nil {
			out = append(out, errorf("%s: %s '%s': %s", name, verb, operand, describe(err)))
		}
	}
	return Result{Lines: out}
}

func (s *Shell) createOne(kind vfs.Kind, name string) error {
	dir, err := vfs.Resolve(s.tree, s.cursor.CurrentPath(), s.cursor)
	if err != nil {
		return err
	}

	node, err := s.tree.CreateNode(kind, name, vfs.Attrs{})
	if err != nil {
		return err
	}
	_, err = s.tree.AppendChild(dir, node)
	return err
}

func (s *Shell) cmdWhoami(invocation) Result {
	return lines(info(s.cursor.User()))
}

func (s *Shell) cmdClear(invocation) Result {
	return Result{Clear: true}
}

func (s *Shell) cmdHelp(inv invocation) Result {
	if len(inv.args) == 0 {
		return Result{Lines: s.help.FormatCommandList()}
	}

	var out []Line
	for _, topic := range inv.args {
		l, err := s.help.FormatHelp(strings.ToLower(topic))
		if err != nil {
			out = append(out, errorf("help: %v.", err))
			continue
		}
		out = append(out, l...)
	}
	return Result{Lines: out}
}

// describe renders a vfs error the way coreutils phrases it
func describe(err error) string {
	switch {
	case errors.Is(err, vfs.ErrNotFound):
		return "No such file or directory"
	case errors.Is(err, vfs.ErrNotADirectory):
		return "Not a directory"
	case errors.Is(err, vfs.ErrIsADirectory):
		return "Is a directory"
	case errors.Is(err, vfs.ErrDuplicateName):
		return "File exists"
	case errors.Is(err, vfs.ErrInvalidName):
		return "Invalid argument"
	default:
		return err.Error()
	}
}
