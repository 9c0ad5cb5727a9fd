package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nick-dorsch/tasktimer/internal/alert"
	"github.com/nick-dorsch/tasktimer/internal/config"
	"github.com/nick-dorsch/tasktimer/internal/db"
	"github.com/nick-dorsch/tasktimer/internal/logging"
	"github.com/nick-dorsch/tasktimer/internal/mcp"
	"github.com/nick-dorsch/tasktimer/internal/notify"
	"github.com/nick-dorsch/tasktimer/internal/server"
	"github.com/nick-dorsch/tasktimer/internal/telemetry"
	"github.com/nick-dorsch/tasktimer/internal/timer"
	"github.com/nick-dorsch/tasktimer/internal/ui"
)

const shutdownTimeout = 5 * time.Second

// Front ends, replaceable in tests.
var (
	runMenu = ui.RunMenu
	runTUI  = ui.Run
)

func main() {
	if err := execute(os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func execute(args []string, stderr io.Writer) error {
	flags := flag.NewFlagSet("tasktimer", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", config.DefaultPath, "Path to config file")
	verbose := flags.Bool("verbose", false, "Enable debug logging")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "Usage: tasktimer [flags] [tui|web|mcp|tone <path>]")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return err
	}

	var command string
	var rest []string
	if flags.NArg() == 0 {
		selected, err := runMenu()
		if err != nil {
			return fmt.Errorf("failed to run menu: %w", err)
		}
		if selected == "" {
			return nil
		}
		command = selected
	} else {
		command = flags.Arg(0)
		rest = flags.Args()[1:]
	}

	if command == "tone" {
		return runTone(rest)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "tui":
		return runTerminal(ctx, cfg, rest)
	case "web":
		return runWeb(ctx, cfg, rest, stderr)
	case "mcp":
		return runMCP(ctx, cfg, rest, stderr)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// session is one in-memory task list with its timers, notifications and
// alert, shared by whichever front end is running.
type session struct {
	logger   *slog.Logger
	db       *db.DB
	notifier *notify.Notifier
	alert    *alert.Alert
	timers   *timer.Controller

	closeLog     io.Closer
	closeMetrics func(context.Context) error
}

// newSession builds the session. players is called once with the session
// logger and returns everything the alert plays through.
func newSession(ctx context.Context, cfg *config.Config, logOut io.Writer, players func(*slog.Logger) alert.Player) (*session, error) {
	logger, closeLog, err := logging.New(cfg.Log, logOut)
	if err != nil {
		return nil, err
	}
	s := &session{logger: logger, closeLog: closeLog}

	s.closeMetrics, err = telemetry.Setup(ctx, cfg.Metrics.OTLPEndpoint, cfg.Metrics.Interval)
	if err != nil {
		closeLog.Close()
		return nil, err
	}
	metrics, err := telemetry.NewGlobalMetrics()
	if err != nil {
		s.Close(ctx)
		return nil, err
	}

	s.db, err = db.Open(db.MemoryPath)
	if err != nil {
		s.Close(ctx)
		return nil, err
	}
	if err := s.db.Init(ctx); err != nil {
		s.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	s.alert, err = alert.New(players(logger), logger)
	if err != nil {
		s.Close(ctx)
		return nil, fmt.Errorf("failed to build alert tone: %w", err)
	}

	s.notifier = notify.NewNotifier()
	s.timers = timer.NewController(s.db, s.alert, s.notifier)
	s.timers.Logger = logger
	s.timers.Metrics = metrics

	logger.Debug("session started")
	return s, nil
}

func (s *session) Close(ctx context.Context) error {
	var errs []error
	if s.timers != nil {
		errs = append(errs, s.timers.Close(ctx))
	}
	if s.notifier != nil {
		s.notifier.Close()
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	if s.closeMetrics != nil {
		errs = append(errs, s.closeMetrics(ctx))
	}
	errs = append(errs, s.closeLog.Close())
	return errors.Join(errs...)
}

// localPlayers plays the tone on this machine according to cfg.
func localPlayers(cfg config.AlertConfig, bell io.Writer) (alert.MultiPlayer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	var players alert.MultiPlayer
	if len(cfg.Command) > 0 {
		p, err := alert.NewCommandPlayer(cfg.Command)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	if cfg.Bell {
		players = append(players, alert.BellPlayer{W: bell})
	}
	return players, nil
}

func fixedPlayers(p alert.MultiPlayer) func(*slog.Logger) alert.Player {
	return func(*slog.Logger) alert.Player { return p }
}

func runTerminal(ctx context.Context, cfg *config.Config, args []string) error {
	tuiFlags := flag.NewFlagSet("tui", flag.ContinueOnError)
	if err := tuiFlags.Parse(args); err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs always go to a file.
	if cfg.Log.File == "" {
		cfg.Log.File = logging.DefaultTUIFile
	}

	players, err := localPlayers(cfg.Alert, os.Stdout)
	if err != nil {
		return err
	}
	s, err := newSession(ctx, cfg, io.Discard, fixedPlayers(players))
	if err != nil {
		return err
	}
	defer closeSession(s)

	bridge := ui.NewBridge()
	s.db.SetOnChange(bridge.TasksChanged)
	s.notifier.SetOnChange(bridge.NotificationsChanged)

	return runTUI(ctx, s.timers, bridge)
}

func runWeb(ctx context.Context, cfg *config.Config, args []string, stderr io.Writer) error {
	webFlags := flag.NewFlagSet("web", flag.ContinueOnError)
	webFlags.SetOutput(stderr)
	addr := webFlags.String("addr", cfg.Web.Addr, "Address to listen on")
	if err := webFlags.Parse(args); err != nil {
		return err
	}

	local, err := localPlayers(cfg.Alert, stderr)
	if err != nil {
		return err
	}

	// Browsers play the tone too, so the hub is one of the players.
	var hub *server.Hub
	s, err := newSession(ctx, cfg, stderr, func(logger *slog.Logger) alert.Player {
		hub = server.NewHub(logger)
		return append(local, hub)
	})
	if err != nil {
		return err
	}
	defer closeSession(s)

	srv := server.NewServer(s.timers, s.notifier, hub, s.alert.WAV(), s.logger)
	s.db.SetOnChange(srv.TasksChanged)
	s.notifier.SetOnChange(srv.NotificationsChanged)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(*addr)
	}()
	s.logger.Info("web server listening", slog.String("url", fmt.Sprintf("http://%s", *addr)))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMCP(ctx context.Context, cfg *config.Config, args []string, stderr io.Writer) error {
	mcpFlags := flag.NewFlagSet("mcp", flag.ContinueOnError)
	mcpFlags.SetOutput(stderr)
	if err := mcpFlags.Parse(args); err != nil {
		return err
	}

	// stdout carries the protocol; the bell and logs go to stderr.
	players, err := localPlayers(cfg.Alert, stderr)
	if err != nil {
		return err
	}
	s, err := newSession(ctx, cfg, stderr, fixedPlayers(players))
	if err != nil {
		return err
	}
	defer closeSession(s)

	err = mcp.Serve(ctx, mcp.NewServer(s.timers, s.notifier))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runTone(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: tasktimer tone <path>")
	}
	wav, err := alert.Tone()
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[0], wav, 0644); err != nil {
		return fmt.Errorf("failed to write tone: %w", err)
	}
	fmt.Printf("✓ Wrote alert tone to %s\n", args[0])
	return nil
}

func closeSession(s *session) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Close(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing session: %v\n", err)
	}
}
