// Package scheduler drives the periodic display refresh: on every tick it
// samples the clock and, when enabled, the system probe, and writes the
// results into the UI through a liveness-checked handle.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atinylittleshell/launcher/internal/clock"
	"github.com/atinylittleshell/launcher/internal/system"
	"github.com/atinylittleshell/launcher/internal/ui"
	"go.uber.org/zap"
)

const (
	ClockInterval = time.Second
	UsageInterval = 500 * time.Millisecond

	defaultDrainTimeout = 250 * time.Millisecond
)

// Config selects the refresh profile.
type Config struct {
	Interval    time.Duration
	SampleUsage bool
}

// ClockProfile refreshes only the time fields once per second.
func ClockProfile() Config {
	return Config{Interval: ClockInterval}
}

// UsageProfile refreshes time and resource usage twice per second.
func UsageProfile() Config {
	return Config{Interval: UsageInterval, SampleUsage: true}
}

type ClockSource interface {
	Sample() clock.TimeSample
}

type Prober interface {
	Refresh(ctx context.Context)
	Read() system.UsageSample
}

type State int

const (
	NotStarted State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "invalid"
	}
}

// Stats counts what happened to each timer firing.
type Stats struct {
	Ticks   uint64 // ticks that wrote to the UI
	Skipped uint64 // firings skipped because the previous tick was still running
	Dropped uint64 // firings dropped because the UI was gone
}

// Scheduler owns a repeating timer. The tick body always runs through the
// UI handle, so it executes on the UI loop and never concurrently with
// itself.
type Scheduler struct {
	cfg    Config
	clock  ClockSource
	probe  Prober
	handle ui.Handle
	logger *zap.Logger

	mu           sync.Mutex
	state        State
	quit         chan struct{}
	done         chan struct{}
	ctx          context.Context
	cancel       context.CancelFunc
	drainTimeout time.Duration

	inFlight atomic.Bool
	ticks    atomic.Uint64
	skipped  atomic.Uint64
	dropped  atomic.Uint64
}

// New creates a scheduler. probe may be nil when cfg.SampleUsage is false.
func New(cfg Config, clockSource ClockSource, probe Prober, handle ui.Handle, logger *zap.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = ClockInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SampleUsage && probe == nil {
		logger.Warn("usage sampling requested without a probe, refreshing clock only")
		cfg.SampleUsage = false
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cfg:          cfg,
		clock:        clockSource,
		probe:        probe,
		handle:       handle,
		logger:       logger,
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
		drainTimeout: defaultDrainTimeout,
	}
}

func (s *Scheduler) Config() Config {
	return s.cfg
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) Stats() Stats {
	return Stats{
		Ticks:   s.ticks.Load(),
		Skipped: s.skipped.Load(),
		Dropped: s.dropped.Load(),
	}
}

// Start arms the timer and fires a first tick right away so the display is
// filled before the first interval elapses. It does not block. Calling it
// again, or after Stop, does nothing.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != NotStarted {
		return
	}
	s.state = Running

	s.logger.Debug("refresh scheduler started",
		zap.Duration("interval", s.cfg.Interval),
		zap.Bool("sampleUsage", s.cfg.SampleUsage),
	)
	go s.run()
}

// Stop disarms the timer. It is idempotent and safe on a scheduler that was
// never started.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	prev := s.state
	s.state = Stopped
	s.mu.Unlock()

	switch prev {
	case NotStarted:
		s.cancel()
		return
	case Stopped:
		return
	}

	close(s.quit)
	s.cancel()
	select {
	case <-s.done:
	case <-time.After(s.drainTimeout):
		s.logger.Debug("refresh scheduler did not stop within drain timeout")
	}

	stats := s.Stats()
	s.logger.Debug("refresh scheduler stopped",
		zap.Uint64("ticks", stats.Ticks),
		zap.Uint64("skipped", stats.Skipped),
		zap.Uint64("dropped", stats.Dropped),
	)
}

func (s *Scheduler) run() {
	defer close(s.done)

	s.fire()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.fire()
		case <-s.quit:
			return
		}
	}
}

// fire hands one tick to the UI loop unless the previous one is still
// pending there.
func (s *Scheduler) fire() {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		return
	}

	ok := s.handle.Dispatch(func(sink ui.Sink) {
		defer s.inFlight.Store(false)
		if sink == nil {
			s.dropped.Add(1)
			s.logger.Debug("ui went away before the tick ran, tick dropped")
			return
		}
		s.apply(sink)
	})
	if !ok {
		s.inFlight.Store(false)
		s.dropped.Add(1)
		s.logger.Debug("ui is gone, tick dropped")
	}
}

// apply is the tick body. It runs on the UI loop and does nothing once the
// scheduler has been stopped.
func (s *Scheduler) apply(sink ui.Sink) {
	if s.ctx.Err() != nil {
		return
	}

	t := s.clock.Sample()
	sink.SetHour12(t.Hour12)
	sink.SetMinute(t.Minute)
	sink.SetMeridiem(t.Meridiem.String())
	sink.SetDate(t.Date)

	if s.cfg.SampleUsage {
		s.probe.Refresh(s.ctx)
		u := s.probe.Read()
		sink.SetCPUsUsage(u.CPUs)
		sink.SetMemoryUsage(u.Memory)
		sink.SetSwapUsage(u.Swap)
		sink.SetMemoryTotal(u.MemoryTotal)
		sink.SetSwapTotal(u.SwapTotal)
	}

	s.ticks.Add(1)
}
