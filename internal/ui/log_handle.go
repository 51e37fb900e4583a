package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// LogHandle is the headless UI layer used when stdout is not a terminal.
// Each dispatch updates its own Adapter, then prints one status line and
// logs the state.
type LogHandle struct {
	mu      sync.Mutex
	adapter *Adapter
	ref     *Ref
	out     io.Writer
	logger  *zap.Logger
}

func NewLogHandle(out io.Writer, logger *zap.Logger) *LogHandle {
	if logger == nil {
		logger = zap.NewNop()
	}
	adapter := NewAdapter()
	return &LogHandle{
		adapter: adapter,
		ref:     NewRef(adapter),
		out:     out,
		logger:  logger,
	}
}

func (h *LogHandle) Dispatch(fn func(Sink)) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	sink, ok := h.ref.Upgrade()
	if !ok {
		return false
	}
	fn(sink)

	state := h.adapter.Snapshot()
	if h.out != nil {
		_, _ = fmt.Fprintln(h.out, FormatLine(state))
	}
	h.logger.Debug("display refreshed",
		zap.Int("hour12", state.Hour12),
		zap.Int("minute", state.Minute),
		zap.String("meridiem", state.Meridiem),
		zap.String("date", state.Date),
		zap.Float64s("cpus", state.CPUsUsage),
		zap.Float64("memory", state.MemoryUsage),
		zap.Float64("swap", state.SwapUsage),
	)
	return true
}

// Close tears the headless UI down; later dispatches are refused.
func (h *LogHandle) Close() {
	h.ref.Release()
}

// State returns a copy of the current display state.
func (h *LogHandle) State() Adapter {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.adapter.Snapshot()
}

// FormatClock renders "1:05 PM".
func FormatClock(a Adapter) string {
	if a.Meridiem == "" {
		return "--:--"
	}
	return fmt.Sprintf("%d:%02d %s", a.Hour12, a.Minute, a.Meridiem)
}

func FormatPercent(v float64) string {
	return fmt.Sprintf("%5.1f%%", v)
}

// FormatTotal renders a byte count, or "n/a" when the total is unknown.
func FormatTotal(bytes uint64) string {
	if bytes == 0 {
		return "n/a"
	}
	return humanize.IBytes(bytes)
}

// FormatLine renders the whole state on one line.
func FormatLine(a Adapter) string {
	var b strings.Builder
	b.WriteString(FormatClock(a))
	if a.Date != "" {
		b.WriteString("  ")
		b.WriteString(a.Date)
	}
	if len(a.CPUsUsage) > 0 {
		b.WriteString("  cpu")
		for _, v := range a.CPUsUsage {
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(FormatPercent(v)))
		}
		fmt.Fprintf(&b, "  mem %s of %s  swap %s of %s",
			strings.TrimSpace(FormatPercent(a.MemoryUsage)), FormatTotal(a.MemoryTotal),
			strings.TrimSpace(FormatPercent(a.SwapUsage)), FormatTotal(a.SwapTotal))
	}
	return b.String()
}
