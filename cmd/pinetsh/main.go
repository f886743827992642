package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pinet-os/pinetsh/internal/config"
	"github.com/pinet-os/pinetsh/internal/logging"
	"github.com/pinet-os/pinetsh/internal/metrics"
	"github.com/pinet-os/pinetsh/internal/render"
	"github.com/pinet-os/pinetsh/internal/security"
	"github.com/pinet-os/pinetsh/internal/shell"
)

// options collects the root command flags
type options struct {
	configPath  string
	user        string
	command     string
	noColor     bool
	logLevel    string
	auditLog    string
	metricsAddr string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "pinetsh [script]",
		Short: shell.Description,
		Long: `pinetsh emulates the terminal of a PiNet Web3 OS node.

Commands run against an in-memory filesystem seeded for the session user;
nothing touches the host. Without arguments an interactive prompt starts.

Examples:
  pinetsh -c 'cd /var/minima && ls -l'
  echo 'neofetch' | pinetsh
  pinetsh provision.sh`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "Path to YAML config file")
	f.StringVarP(&opts.user, "user", "u", "", "Session user (overrides config)")
	f.StringVarP(&opts.command, "command", "c", "", "Execute a script string and exit")
	f.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	f.StringVar(&opts.auditLog, "audit-log", "", "Append a JSON-lines audit trail to this file")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (%s)\n", shell.Name, shell.Version, shell.BuildCommit)
		},
	}
}

// applyFlags layers explicit flags over the loaded config
func (o *options) applyFlags(cfg *config.Config) {
	if o.user != "" {
		cfg.User = o.user
	}
	if o.noColor {
		cfg.Color = false
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.auditLog != "" {
		cfg.AuditLog = o.auditLog
	}
	if o.metricsAddr != "" {
		cfg.MetricsAddr = o.metricsAddr
	}
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	opts.applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logging.Init(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logging.Sync() }()
	log := logging.L()
	log.Info("configuration loaded",
		zap.String("path", opts.configPath),
		zap.String("user", cfg.User),
		zap.String("hostname", cfg.Hostname),
		zap.Bool("audit", cfg.AuditLog != ""),
		zap.String("metrics_addr", cfg.MetricsAddr),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Error("metrics server failed", zap.String("addr", cfg.MetricsAddr), zap.Error(err))
			}
		}()
	}

	sessionID := uuid.NewString()
	audit, err := security.CreateAuditManagerFromConfig(cfg.AuditLog, sessionID, cfg.User, log)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}

	sh, err := shell.New(&shell.Config{
		User:      cfg.User,
		Hostname:  cfg.Hostname,
		ShellName: cfg.ShellName,
		SessionID: sessionID,
		Logger:    log,
		Metrics:   m,
		Audit:     audit,
	})
	if err != nil {
		_ = audit.Close()
		return err
	}
	defer func() {
		if err := sh.Close(); err != nil {
			log.Warn("failed to close session", zap.Error(err))
		}
	}()

	theme := render.NewTheme(cfg.Color)
	out := cmd.OutOrStdout()

	script, ok, err := readScript(cmd.InOrStdin(), opts.command, args)
	if err != nil {
		return err
	}
	if ok {
		return sh.RunScript(script, theme, out)
	}

	return sh.Interactive(shell.InteractiveConfig{
		HistoryFile:  cfg.HistoryFile,
		HistoryLimit: cfg.HistoryLimit,
		Renderer:     theme,
	})
}

// readScript picks the non-interactive input, in order: -c, a script file,
// then piped stdin. ok is false when stdin is a terminal.
func readScript(stdin io.Reader, command string, args []string) (string, bool, error) {
	if command != "" {
		return command, true, nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", false, fmt.Errorf("error reading script file %s: %w", args[0], err)
		}
		return string(content), true, nil
	}

	if f, isFile := stdin.(*os.File); isFile {
		stat, err := f.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return "", false, nil
		}
	}
	content, err := io.ReadAll(stdin)
	if err != nil {
		return "", false, fmt.Errorf("error reading from stdin: %w", err)
	}
	return string(content), true, nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
