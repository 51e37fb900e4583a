package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v4/cpu"
	"go.uber.org/zap"
)

// ErrNoCores is returned when the counters report no logical core at startup.
var ErrNoCores = errors.New("no logical cores reported")

// UsageSample is the display form of the host resource usage.
type UsageSample struct {
	CPUs        []float64 // 0-100 per logical core, OS order
	Memory      float64   // 0-100
	Swap        float64   // 0-100
	MemoryTotal uint64    // bytes
	SwapTotal   uint64    // bytes
}

type Options struct {
	// TruncatePercent reproduces the integer division used by the first
	// launcher release: used*100/total is truncated before conversion.
	TruncatePercent bool
}

// Probe owns a Counters handle and the CPU history needed to turn
// cumulative times into per-core load. It is not safe for concurrent use;
// the refresh scheduler is its only caller.
type Probe struct {
	counters Counters
	opts     Options
	logger   *zap.Logger

	cores int
	prev  []cpu.TimesStat
	cpus  []float64

	memUsed   uint64
	memTotal  uint64
	swapUsed  uint64
	swapTotal uint64
}

// NewProbe reads the counters once to fix the core count and prime the CPU
// baseline. A handle that cannot report any core is a startup failure.
func NewProbe(ctx context.Context, counters Counters, opts Options, logger *zap.Logger) (*Probe, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	times, err := counters.CPUTimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cpu times: %w", err)
	}
	if len(times) == 0 {
		return nil, ErrNoCores
	}

	p := &Probe{
		counters: counters,
		opts:     opts,
		logger:   logger,
		cores:    len(times),
		prev:     times,
		cpus:     make([]float64, len(times)),
	}
	p.refreshMemory(ctx)

	logger.Debug("system probe initialized", zap.Int("cores", p.cores))
	return p, nil
}

func (p *Probe) CoreCount() int {
	return p.cores
}

// Refresh pulls fresh counters into the probe. It never fails: a counter
// that cannot be read is reported as zero usage until the next refresh.
func (p *Probe) Refresh(ctx context.Context) {
	p.refreshCPU(ctx)
	p.refreshMemory(ctx)
}

func (p *Probe) refreshCPU(ctx context.Context) {
	times, err := p.counters.CPUTimes(ctx)
	if err != nil {
		p.logger.Debug("failed to read cpu times", zap.Error(err))
		clear(p.cpus)
		return
	}

	for i := 0; i < p.cores; i++ {
		if i >= len(times) {
			p.cpus[i] = 0
			continue
		}
		p.cpus[i] = busyPercent(p.prev[i], times[i])
		p.prev[i] = times[i]
	}
}

func (p *Probe) refreshMemory(ctx context.Context) {
	p.memUsed, p.memTotal = 0, 0
	if vm, err := p.counters.VirtualMemory(ctx); err != nil {
		p.logger.Debug("failed to read virtual memory", zap.Error(err))
	} else if vm != nil {
		p.memUsed, p.memTotal = vm.Used, vm.Total
	}

	p.swapUsed, p.swapTotal = 0, 0
	if sw, err := p.counters.SwapMemory(ctx); err != nil {
		p.logger.Debug("failed to read swap memory", zap.Error(err))
	} else if sw != nil {
		p.swapUsed, p.swapTotal = sw.Used, sw.Total
	}
}

// Read projects the current counter state into percentages. The returned
// CPUs slice is a copy and always has CoreCount entries.
func (p *Probe) Read() UsageSample {
	percent := UsagePercent
	if p.opts.TruncatePercent {
		percent = TruncatedUsagePercent
	}

	return UsageSample{
		CPUs:        lo.Map(p.cpus, func(v float64, _ int) float64 { return lo.Clamp(v, 0, 100) }),
		Memory:      percent(p.memUsed, p.memTotal),
		Swap:        percent(p.swapUsed, p.swapTotal),
		MemoryTotal: p.memTotal,
		SwapTotal:   p.swapTotal,
	}
}

// UsagePercent returns used/total as a percentage in [0, 100].
// A zero total yields 0.
func UsagePercent(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return lo.Clamp(float64(used)/float64(total)*100, 0, 100)
}

// TruncatedUsagePercent is UsagePercent with the fractional part dropped
// by integer division.
func TruncatedUsagePercent(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	if used > total {
		used = total
	}
	return float64(used * 100 / total)
}

// busyPercent computes the share of non-idle time between two cumulative
// samples of the same core.
func busyPercent(prev, cur cpu.TimesStat) float64 {
	prevTotal, prevBusy := totalAndBusy(prev)
	curTotal, curBusy := totalAndBusy(cur)

	deltaTotal := curTotal - prevTotal
	if deltaTotal <= 0 {
		return 0
	}
	deltaBusy := curBusy - prevBusy
	if deltaBusy <= 0 {
		return 0
	}
	return lo.Clamp(deltaBusy/deltaTotal*100, 0, 100)
}

func totalAndBusy(t cpu.TimesStat) (float64, float64) {
	// Guest time is already accounted in User on Linux.
	total := t.User + t.System + t.Idle + t.Nice + t.Iowait + t.Irq + t.Softirq + t.Steal
	busy := total - t.Idle - t.Iowait
	return total, busy
}
