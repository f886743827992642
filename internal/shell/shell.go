// Package shell implements the PiNet terminal: a command interpreter over
// an in-memory vfs.Tree with one working directory and one user.
//
// A Shell is a single session. Execute runs one input line to completion
// and never returns an error; every failure is reported as a KindError or
// KindWarning line in the Result.
package shell

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pinet-os/pinetsh/internal/metrics"
	"github.com/pinet-os/pinetsh/internal/security"
	"github.com/pinet-os/pinetsh/internal/vfs"
)

// Version information
var (
	Version     = "1.0.35"  // Will be overridden by build-time ldflags
	BuildCommit = "unknown" // Will be overridden by build-time ldflags
	Name        = "pinetsh"
	Description = "PiNet Web3 OS node terminal"
)

// Config holds shell configuration
type Config struct {
	User      string
	Hostname  string
	ShellName string

	// SessionID is generated when empty
	SessionID string

	// Tree is used as-is when set; otherwise a seeded tree is built for User
	Tree *vfs.Tree

	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Audit   *security.AuditManager
}

// Shell represents one terminal session
type Shell struct {
	config Config

	id     string
	tree   *vfs.Tree
	cursor *Cursor

	commands map[string]*command
	help     *HelpSystem

	log *zap.Logger
}

// New creates a new shell session
func New(config *Config) (*Shell, error) {
	cfg := Config{}
	if config != nil {
		cfg = *config
	}
	if cfg.User == "" {
		cfg.User = "pi"
	}
	if cfg.Hostname == "" {
		cfg.Hostname = "raspberrypi"
	}
	if cfg.ShellName == "" {
		cfg.ShellName = "bash"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	if cfg.Audit == nil {
		cfg.Audit = security.NewAuditManager(nil, cfg.SessionID, cfg.User, cfg.Logger)
	}

	tree := cfg.Tree
	if tree == nil {
		var err error
		tree, err = vfs.NewSeededTree(cfg.User)
		if err != nil {
			return nil, fmt.Errorf("failed to seed filesystem: %w", err)
		}
	}

	cursor := NewCursor(cfg.User)
	id, err := vfs.Resolve(tree, cursor.Home(), cursor)
	if err != nil {
		return nil, fmt.Errorf("home directory: %w", err)
	}
	if n, _ := tree.Node(id); !n.IsDir() {
		return nil, fmt.Errorf("home directory %s: %w", cursor.Home(), vfs.ErrNotADirectory)
	}

	s := &Shell{
		config: cfg,
		id:     cfg.SessionID,
		tree:   tree,
		cursor: cursor,
		help:   NewHelpSystem(),
	}
	s.log = cfg.Logger.With(zap.String("session", s.id))
	s.commands = s.registerCommands()

	cfg.Metrics.SessionOpened()
	cfg.Metrics.SetVFSNodes(tree.Len())
	cfg.Audit.SessionStarted(cursor.CurrentPath())
	s.log.Info("session started",
		zap.String("user", cfg.User),
		zap.String("cwd", cursor.CurrentPath()),
		zap.Int("vfs_nodes", tree.Len()),
	)

	return s, nil
}

// SessionID returns the unique id of this session
func (s *Shell) SessionID() string { return s.id }

// CurrentPath returns the working directory
func (s *Shell) CurrentPath() string { return s.cursor.CurrentPath() }

// User returns the active user
func (s *Shell) User() string { return s.cursor.User() }

// Tree exposes the filesystem owned by this session
func (s *Shell) Tree() *vfs.Tree { return s.tree }

// Prompt returns the bash-style prompt, e.g. "pi@raspberrypi:~$ "
func (s *Shell) Prompt() string {
	return fmt.Sprintf("%s@%s:%s$ ", s.cursor.User(), s.config.Hostname, s.cursor.displayPath())
}

// Commands lists the names of all registered commands
func (s *Shell) Commands() []string {
	return s.help.ListCommands()
}

// Close ends the session
func (s *Shell) Close() error {
	s.config.Metrics.SessionClosed()
	s.log.Info("session closed")
	return s.config.Audit.Close()
}

// invocation is one parsed input line
type invocation struct {
	line     string
	name     string // lower-cased command name
	typed    string // command name as typed
	args     []string
	elevated bool
}

// parse splits a line into an invocation, stripping any sudo prefix.
// ok is false for blank input and for a bare sudo.
func parse(line string) (inv invocation, ok bool) {
	inv.line = strings.TrimSpace(line)
	fields := strings.Fields(inv.line)

	for len(fields) > 0 && strings.EqualFold(fields[0], "sudo") {
		inv.elevated = true
		i := 1
		for i < len(fields) && strings.HasPrefix(fields[i], "-") {
			i++
		}
		fields = fields[i:]
	}
	if len(fields) == 0 {
		return inv, false
	}

	inv.typed = fields[0]
	inv.name = strings.ToLower(fields[0])
	inv.args = fields[1:]
	return inv, true
}

var sudoUsage = []string{
	"usage: sudo -h | -K | -k | -V",
	"usage: sudo -v [-AknS] [-g group] [-h host] [-p prompt] [-u user]",
}

// Execute runs one input line
func (s *Shell) Execute(line string) Result {
	inv, ok := parse(line)
	if !ok {
		if inv.elevated {
			return Result{Lines: infos(sudoUsage...)}
		}
		return Result{}
	}

	cwd := s.cursor.CurrentPath()

	var res Result
	status := metrics.StatusOK
	label := inv.name

	cmd, found := s.commands[inv.name]
	if found {
		res = cmd.run(inv)
		if res.HasError() {
			status = metrics.StatusError
		}
	} else {
		res = Result{Lines: []Line{
			errorf("%s: %s: command not found", s.config.ShellName, inv.typed),
		}}
		status = metrics.StatusNotFound
		label = "unknown"
	}

	s.config.Metrics.RecordCommand(label, status)
	s.config.Metrics.SetVFSNodes(s.tree.Len())
	s.config.Audit.CommandExecuted(cwd, inv.name, inv.line, inv.elevated, status == metrics.StatusOK)
	s.log.Debug("command dispatched",
		zap.String("command", inv.name),
		zap.Strings("args", inv.args),
		zap.Bool("elevated", inv.elevated),
		zap.String("cwd", cwd),
		zap.String("status", status),
	)

	return res
}
