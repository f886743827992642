package shell

import (
	"fmt"
	"sort"
	"strings"
)

// HelpSystem provides per-command help
type HelpSystem struct {
	commands map[string]*CommandHelp
}

// CommandHelp contains help information for a command
type CommandHelp struct {
	Name        string
	Usage       string
	Description string
	Options     []Option
}

// Option represents a command option
type Option struct {
	Flag        string
	Description string
}

// NewHelpSystem creates a new help system
func NewHelpSystem() *HelpSystem {
	h := &HelpSystem{
		commands: make(map[string]*CommandHelp),
	}

	h.initializeFilesystemHelp()
	h.initializeSystemHelp()
	h.initializeNodeHelp()

	return h
}

// GetHelp returns help information for a command
func (h *HelpSystem) GetHelp(command string) (*CommandHelp, error) {
	if help, exists := h.commands[command]; exists {
		return help, nil
	}

	return nil, fmt.Errorf("no help topics match `%s'", command)
}

// ListCommands returns a list of all available commands
func (h *HelpSystem) ListCommands() []string {
	var commands []string
	for name := range h.commands {
		commands = append(commands, name)
	}
	sort.Strings(commands)
	return commands
}

// FormatHelp formats help information as display lines
func (h *HelpSystem) FormatHelp(command string) ([]Line, error) {
	help, err := h.GetHelp(command)
	if err != nil {
		return nil, err
	}

	lines := []Line{
		{Text: fmt.Sprintf("%s: %s", help.Name, help.Usage), Kind: KindHeader},
		info("    " + help.Description),
	}
	if len(help.Options) > 0 {
		lines = append(lines, info(""), info("    Options:"))
		for _, opt := range help.Options {
			lines = append(lines, info(fmt.Sprintf("      %-12s %s", opt.Flag, opt.Description)))
		}
	}
	return lines, nil
}

// FormatCommandList is the output of a bare "help"
func (h *HelpSystem) FormatCommandList() []Line {
	return infos(
		"GNU bash, version 5.2.15(1)-release (aarch64-unknown-linux-gnu)",
		"These shell commands are defined internally.  Type `help` to see this list.",
		"Type `help name` to find out more about the function `name`.",
		"",
		"A star (*) next to a name means that the command is disabled.",
		"",
		" "+strings.Join([]string{"ls", "cd", "pwd", "cat", "mkdir", "touch", "whoami", "uname", "clear", "neofetch", "apt", "sudo", "reboot"}, ", "),
		" "+strings.Join([]string{"minima", "cluster", "top"}, ", "),
	)
}

func (h *HelpSystem) add(help *CommandHelp) {
	h.commands[help.Name] = help
}

func (h *HelpSystem) initializeFilesystemHelp() {
	h.add(&CommandHelp{
		Name:        "ls",
		Usage:       "ls [-l] [path]",
		Description: "List directory contents. Directories are suffixed with /.",
		Options: []Option{
			{Flag: "-l", Description: "use a long listing format"},
			{Flag: "-a", Description: "accepted for compatibility; hidden files are always shown"},
		},
	})
	h.add(&CommandHelp{
		Name:        "cd",
		Usage:       "cd [dir]",
		Description: "Change the working directory. With no argument, go to the home directory.",
	})
	h.add(&CommandHelp{
		Name:        "pwd",
		Usage:       "pwd",
		Description: "Print the name of the current working directory.",
	})
	h.add(&CommandHelp{
		Name:        "cat",
		Usage:       "cat <file>...",
		Description: "Print the contents of files.",
	})
	h.add(&CommandHelp{
		Name:        "mkdir",
		Usage:       "mkdir <name>...",
		Description: "Create directories in the current working directory.",
	})
	h.add(&CommandHelp{
		Name:        "touch",
		Usage:       "touch <name>...",
		Description: "Create empty files in the current working directory.",
	})
}

func (h *HelpSystem) initializeSystemHelp() {
	h.add(&CommandHelp{
		Name:        "whoami",
		Usage:       "whoami",
		Description: "Print the current user name.",
	})
	h.add(&CommandHelp{
		Name:        "uname",
		Usage:       "uname [-a|-r]",
		Description: "Print system information.",
		Options: []Option{
			{Flag: "-a", Description: "print all information"},
			{Flag: "-r", Description: "print the kernel release"},
		},
	})
	h.add(&CommandHelp{
		Name:        "clear",
		Usage:       "clear",
		Description: "Clear the terminal screen.",
	})
	h.add(&CommandHelp{
		Name:        "neofetch",
		Usage:       "neofetch",
		Description: "Show system information with a logo.",
	})
	h.add(&CommandHelp{
		Name:        "apt",
		Usage:       "apt [update|upgrade|install <pkg>]",
		Description: "Package manager. apt-get is an alias.",
	})
	h.add(&CommandHelp{
		Name:        "apt-get",
		Usage:       "apt-get [update|upgrade|install <pkg>]",
		Description: "Package manager. Same as apt.",
	})
	h.add(&CommandHelp{
		Name:        "top",
		Usage:       "top",
		Description: "Display a snapshot of running processes.",
	})
	h.add(&CommandHelp{
		Name:        "reboot",
		Usage:       "reboot",
		Description: "Reboot the node.",
	})
	h.add(&CommandHelp{
		Name:        "help",
		Usage:       "help [command]",
		Description: "Display information about builtin commands.",
	})
	h.add(&CommandHelp{
		Name:        "sudo",
		Usage:       "sudo [-flags] <command>",
		Description: "Execute a command as the superuser.",
	})
}

func (h *HelpSystem) initializeNodeHelp() {
	h.add(&CommandHelp{
		Name:        "minima",
		Usage:       "minima [status|peers]",
		Description: "Query the local Minima node.",
		Options: []Option{
			{Flag: "status", Description: "show chain and wallet sync state"},
			{Flag: "peers", Description: "show connected peers"},
		},
	})
	h.add(&CommandHelp{
		Name:        "cluster",
		Usage:       "cluster [list]",
		Description: "Manage the Pi cluster.",
		Options: []Option{
			{Flag: "list", Description: "list cluster nodes and their HATs"},
		},
	})
}
