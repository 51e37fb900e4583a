package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAdapterSetters(t *testing.T) {
	a := NewAdapter()
	var sink Sink = a

	sink.SetHour12(1)
	sink.SetMinute(5)
	sink.SetMeridiem("PM")
	sink.SetDate("Tuesday, Mar 05")
	cpus := []float64{1, 2}
	sink.SetCPUsUsage(cpus)
	sink.SetMemoryUsage(50)
	sink.SetSwapUsage(10)
	sink.SetMemoryTotal(8 << 30)
	sink.SetSwapTotal(2 << 30)

	cpus[0] = 99
	assert.Equal(t, []float64{1, 2}, a.CPUsUsage, "adapter must keep its own copy")
	assert.Equal(t, 1, a.Hour12)
	assert.Equal(t, 5, a.Minute)
	assert.Equal(t, "PM", a.Meridiem)
	assert.Equal(t, "Tuesday, Mar 05", a.Date)
	assert.Equal(t, 50.0, a.MemoryUsage)
	assert.Equal(t, 10.0, a.SwapUsage)
}

func TestRefRelease(t *testing.T) {
	a := NewAdapter()
	r := NewRef(a)

	sink, ok := r.Upgrade()
	require.True(t, ok)
	assert.Same(t, a, sink)

	r.Release()
	r.Release()
	_, ok = r.Upgrade()
	assert.False(t, ok)
	assert.False(t, r.Alive())

	var nilRef *Ref
	assert.False(t, nilRef.Alive())
	nilRef.Release()
}

func TestDirectHandleSkipsDeadTarget(t *testing.T) {
	a := NewAdapter()
	r := NewRef(a)
	h := NewDirectHandle(r)

	assert.True(t, h.Dispatch(func(s Sink) { s.SetMinute(7) }))
	assert.Equal(t, 7, a.Minute)

	r.Release()
	called := false
	assert.False(t, h.Dispatch(func(s Sink) { called = true }))
	assert.False(t, called)
	assert.Equal(t, 7, a.Minute)
}

func TestLogHandle(t *testing.T) {
	var out bytes.Buffer
	h := NewLogHandle(&out, zap.NewNop())

	ok := h.Dispatch(func(s Sink) {
		s.SetHour12(1)
		s.SetMinute(5)
		s.SetMeridiem("PM")
		s.SetDate("Tuesday, Mar 05")
	})
	require.True(t, ok)
	assert.Equal(t, "1:05 PM  Tuesday, Mar 05\n", out.String())
	assert.Equal(t, 5, h.State().Minute)

	h.Close()
	out.Reset()
	assert.False(t, h.Dispatch(func(s Sink) { s.SetMinute(6) }))
	assert.Empty(t, out.String())
	assert.Equal(t, 5, h.State().Minute)
}

func TestFormatLine(t *testing.T) {
	a := Adapter{
		Hour12:      12,
		Minute:      30,
		Meridiem:    "AM",
		Date:        "Tuesday, Mar 05",
		CPUsUsage:   []float64{0, 12.5},
		MemoryUsage: 50,
		SwapUsage:   0,
		MemoryTotal: 8 << 30,
	}
	assert.Equal(t,
		"12:30 AM  Tuesday, Mar 05  cpu 0.0% 12.5%  mem 50.0% of 8.0 GiB  swap 0.0% of n/a",
		FormatLine(a))

	assert.Equal(t, "--:--", FormatClock(Adapter{}))
}
