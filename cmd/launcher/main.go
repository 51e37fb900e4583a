package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atinylittleshell/launcher/internal/clock"
	"github.com/atinylittleshell/launcher/internal/config"
	"github.com/atinylittleshell/launcher/internal/core"
	"github.com/atinylittleshell/launcher/internal/launcher"
	"github.com/atinylittleshell/launcher/internal/scheduler"
	"github.com/atinylittleshell/launcher/internal/system"
	"github.com/atinylittleshell/launcher/internal/termtitle"
	"github.com/atinylittleshell/launcher/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var BUILD_VERSION = "dev"

var configPath = flag.String("config", "", "use a custom config file instead of ~/.config/launcher/config.yaml")
var profileFlag = flag.String("profile", "", "refresh profile: clock or usage")
var intervalFlag = flag.Duration("interval", 0, "override the refresh interval, e.g. 250ms")
var headlessFlag = flag.Bool("headless", false, "print refreshes as lines instead of drawing the home screen")

var helpFlag = flag.Bool("h", false, "display help information")
var versionFlag = flag.Bool("ver", false, "display build version")

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if *helpFlag {
		fmt.Println("Usage of launcher:")
		flag.PrintDefaults()
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "launcher: %v\n", err)
		os.Exit(1)
	}

	logger, err := initializeLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "launcher: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("-------- new launcher session --------", zap.Any("args", os.Args))

	if err := run(cfg, logger); err != nil {
		logger.Error("unhandled error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "launcher: %v\n", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	path := *configPath
	if path == "" {
		path = core.ConfigFile()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if *profileFlag != "" {
		cfg.Profile = *profileFlag
	}
	if *intervalFlag != 0 {
		cfg.Interval = config.Duration(*intervalFlag)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func initializeLogger(cfg config.Config) (*zap.Logger, error) {
	logLevel := cfg.GetLogLevel()
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	if cfg.CleanLogFile {
		_ = os.Remove(core.LogFile())
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}
	return loggerConfig.Build()
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var probe scheduler.Prober
	if cfg.SampleUsage() {
		p, err := system.NewProbe(ctx, system.NewHostCounters(), system.Options{
			TruncatePercent: cfg.TruncatePercent,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to start system probe: %w", err)
		}
		logger.Info("system probe ready", zap.Int("cores", p.CoreCount()))
		probe = p
	}

	schedulerConfig := scheduler.Config{
		Interval:    cfg.RefreshInterval(),
		SampleUsage: cfg.SampleUsage(),
	}

	if *headlessFlag || !term.IsTerminal(int(os.Stdout.Fd())) {
		return runHeadless(ctx, schedulerConfig, probe, logger)
	}
	return runInteractive(ctx, cfg, schedulerConfig, probe, logger)
}

func runInteractive(ctx context.Context, cfg config.Config, schedulerConfig scheduler.Config, probe scheduler.Prober, logger *zap.Logger) error {
	title := termtitle.New()
	if err := title.Set(cfg.Title); err != nil && !errors.Is(err, termtitle.ErrDumbTerminal) {
		logger.Warn("failed to set terminal title", zap.Error(err))
	}
	defer func() {
		_ = title.Reset()
	}()

	program := launcher.New(ctx, launcher.Options{
		Title:       cfg.Title,
		Entries:     cfg.Entries,
		SampleUsage: schedulerConfig.SampleUsage,
		HomeDir:     core.HomeDir(),
	}, logger)

	refresh := scheduler.New(schedulerConfig, clock.New(), probe, program, logger)
	refresh.Start()
	defer logStats(refresh, logger)
	defer refresh.Stop()

	err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		logger.Info("launcher interrupted")
		return nil
	}
	return err
}

func runHeadless(ctx context.Context, schedulerConfig scheduler.Config, probe scheduler.Prober, logger *zap.Logger) error {
	handle := ui.NewLogHandle(os.Stdout, logger)
	defer handle.Close()

	refresh := scheduler.New(schedulerConfig, clock.New(), probe, handle, logger)
	refresh.Start()
	defer logStats(refresh, logger)
	defer refresh.Stop()

	<-ctx.Done()
	logger.Info("headless launcher stopping", zap.Duration("interval", schedulerConfig.Interval))
	return nil
}

func logStats(refresh *scheduler.Scheduler, logger *zap.Logger) {
	stats := refresh.Stats()
	logger.Info("refresh stopped",
		zap.Uint64("ticks", stats.Ticks),
		zap.Uint64("skipped", stats.Skipped),
		zap.Uint64("dropped", stats.Dropped),
		zap.Stringer("state", refresh.State()),
	)
}
