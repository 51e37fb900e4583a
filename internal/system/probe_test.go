package system

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCounters advances every core by the configured busy/idle ticks on
// each CPUTimes call.
type fakeCounters struct {
	cores     int
	busyStep  []float64
	idleStep  float64
	calls     int
	cpuErr    error
	memErr    error
	memTotal  uint64
	memUsed   uint64
	swapTotal uint64
	swapUsed  uint64
	dropCores int
}

func (f *fakeCounters) CPUTimes(ctx context.Context) ([]cpu.TimesStat, error) {
	if f.cpuErr != nil {
		return nil, f.cpuErr
	}
	f.calls++
	n := f.cores - f.dropCores
	times := make([]cpu.TimesStat, 0, n)
	for i := 0; i < n; i++ {
		busy := 0.0
		if i < len(f.busyStep) {
			busy = f.busyStep[i]
		}
		times = append(times, cpu.TimesStat{
			CPU:  fmt.Sprintf("cpu%d", i),
			User: busy * float64(f.calls),
			Idle: f.idleStep * float64(f.calls),
		})
	}
	return times, nil
}

func (f *fakeCounters) VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	if f.memErr != nil {
		return nil, f.memErr
	}
	return &mem.VirtualMemoryStat{Total: f.memTotal, Used: f.memUsed}, nil
}

func (f *fakeCounters) SwapMemory(ctx context.Context) (*mem.SwapMemoryStat, error) {
	if f.memErr != nil {
		return nil, f.memErr
	}
	return &mem.SwapMemoryStat{Total: f.swapTotal, Used: f.swapUsed}, nil
}

func newTestProbe(t *testing.T, f *fakeCounters, opts Options) *Probe {
	t.Helper()
	p, err := NewProbe(context.Background(), f, opts, zap.NewNop())
	require.NoError(t, err)
	return p
}

func TestUsagePercent(t *testing.T) {
	tests := []struct {
		name  string
		used  uint64
		total uint64
		want  float64
	}{
		{"zero total", 0, 0, 0},
		{"zero total with used", 10, 0, 0},
		{"empty", 0, 8000, 0},
		{"half", 4000, 8000, 50},
		{"full", 8000, 8000, 100},
		{"fractional", 1, 3, 100.0 / 3},
		{"used above total", 9000, 8000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UsagePercent(tt.used, tt.total)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestTruncatedUsagePercent(t *testing.T) {
	assert.Equal(t, 0.0, TruncatedUsagePercent(5, 0))
	assert.Equal(t, 33.0, TruncatedUsagePercent(1, 3))
	assert.Equal(t, 0.0, TruncatedUsagePercent(1, 1000))
	assert.Equal(t, 100.0, TruncatedUsagePercent(12, 10))
}

func TestNewProbeErrors(t *testing.T) {
	_, err := NewProbe(context.Background(), &fakeCounters{cores: 0}, Options{}, nil)
	assert.ErrorIs(t, err, ErrNoCores)

	readErr := errors.New("permission denied")
	_, err = NewProbe(context.Background(), &fakeCounters{cores: 2, cpuErr: readErr}, Options{}, nil)
	assert.ErrorIs(t, err, readErr)
}

func TestProbeIdleCoresAndHalfMemory(t *testing.T) {
	f := &fakeCounters{cores: 4, idleStep: 100, memTotal: 8000, memUsed: 4000}
	p := newTestProbe(t, f, Options{})

	p.Refresh(context.Background())
	s := p.Read()

	assert.Equal(t, []float64{0, 0, 0, 0}, s.CPUs)
	assert.Equal(t, 50.0, s.Memory)
	assert.Equal(t, uint64(8000), s.MemoryTotal)
}

func TestProbeZeroTotals(t *testing.T) {
	f := &fakeCounters{cores: 2, idleStep: 10, memTotal: 0, memUsed: 0, swapTotal: 0, swapUsed: 0}
	p := newTestProbe(t, f, Options{})

	p.Refresh(context.Background())
	s := p.Read()

	assert.Equal(t, 0.0, s.Memory)
	assert.Equal(t, 0.0, s.Swap)
}

func TestProbePerCoreLoad(t *testing.T) {
	f := &fakeCounters{cores: 3, busyStep: []float64{0, 50, 100}, idleStep: 50, memTotal: 1, swapTotal: 4, swapUsed: 1}
	p := newTestProbe(t, f, Options{})

	for i := 0; i < 5; i++ {
		p.Refresh(context.Background())
		s := p.Read()
		require.Len(t, s.CPUs, 3)
		assert.InDelta(t, 0, s.CPUs[0], 1e-9)
		assert.InDelta(t, 50, s.CPUs[1], 1e-9)
		assert.InDelta(t, 100.0*100/150, s.CPUs[2], 1e-9)
		assert.Equal(t, 25.0, s.Swap)
	}
}

func TestProbeCoreCountStableWhenCoresDisappear(t *testing.T) {
	f := &fakeCounters{cores: 4, busyStep: []float64{10, 10, 10, 10}, idleStep: 10}
	p := newTestProbe(t, f, Options{})
	assert.Equal(t, 4, p.CoreCount())

	f.dropCores = 2
	p.Refresh(context.Background())
	s := p.Read()
	require.Len(t, s.CPUs, 4)
	assert.Equal(t, 0.0, s.CPUs[2])
	assert.Equal(t, 0.0, s.CPUs[3])
}

func TestProbeReadErrorsDegradeToZero(t *testing.T) {
	f := &fakeCounters{cores: 2, busyStep: []float64{10, 10}, idleStep: 10, memTotal: 100, memUsed: 10}
	p := newTestProbe(t, f, Options{})

	p.Refresh(context.Background())
	assert.Equal(t, 10.0, p.Read().Memory)

	f.cpuErr = errors.New("boom")
	f.memErr = errors.New("boom")
	p.Refresh(context.Background())
	s := p.Read()
	assert.Equal(t, []float64{0, 0}, s.CPUs)
	assert.Equal(t, 0.0, s.Memory)
	assert.Equal(t, 0.0, s.Swap)
}

func TestProbeReadReturnsCopy(t *testing.T) {
	f := &fakeCounters{cores: 2, busyStep: []float64{10, 10}, idleStep: 10}
	p := newTestProbe(t, f, Options{})
	p.Refresh(context.Background())

	s := p.Read()
	s.CPUs[0] = 99
	assert.NotEqual(t, 99.0, p.Read().CPUs[0])
}

func TestProbeTruncatePercent(t *testing.T) {
	f := &fakeCounters{cores: 1, idleStep: 1, memTotal: 3, memUsed: 1}

	exact := newTestProbe(t, f, Options{})
	assert.InDelta(t, 33.333, exact.Read().Memory, 0.001)

	truncated := newTestProbe(t, f, Options{TruncatePercent: true})
	assert.Equal(t, 33.0, truncated.Read().Memory)
}
