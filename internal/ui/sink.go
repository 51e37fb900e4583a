// Package ui holds the state model shared between the refresh scheduler and
// whatever renders it. The scheduler writes fields through Sink; renderers
// only read the Adapter.
package ui

// Sink is the set of independently settable display fields.
type Sink interface {
	SetHour12(hour int)
	SetMinute(minute int)
	SetMeridiem(meridiem string)
	SetDate(date string)

	SetCPUsUsage(cpus []float64)
	SetMemoryUsage(percent float64)
	SetSwapUsage(percent float64)
	SetMemoryTotal(bytes uint64)
	SetSwapTotal(bytes uint64)
}

// Handle is a non-owning reference to a UI layer. Dispatch reports false,
// without calling fn, once the UI has been torn down. When it reports true,
// fn is called exactly once on the UI loop: with the live Sink, or with nil
// if the UI went away before the call was delivered.
type Handle interface {
	Dispatch(fn func(Sink)) bool
}

// Adapter is the concrete field model. It has no locking: it must only be
// mutated and read from the UI loop.
type Adapter struct {
	Hour12      int
	Minute      int
	Meridiem    string
	Date        string
	CPUsUsage   []float64
	MemoryUsage float64
	SwapUsage   float64
	MemoryTotal uint64
	SwapTotal   uint64
}

func NewAdapter() *Adapter {
	return &Adapter{}
}

func (a *Adapter) SetHour12(hour int)          { a.Hour12 = hour }
func (a *Adapter) SetMinute(minute int)        { a.Minute = minute }
func (a *Adapter) SetMeridiem(meridiem string) { a.Meridiem = meridiem }
func (a *Adapter) SetDate(date string)         { a.Date = date }

// SetCPUsUsage stores a private copy of cpus.
func (a *Adapter) SetCPUsUsage(cpus []float64) {
	a.CPUsUsage = append(a.CPUsUsage[:0], cpus...)
}

func (a *Adapter) SetMemoryUsage(percent float64) { a.MemoryUsage = percent }
func (a *Adapter) SetSwapUsage(percent float64)   { a.SwapUsage = percent }
func (a *Adapter) SetMemoryTotal(bytes uint64)    { a.MemoryTotal = bytes }
func (a *Adapter) SetSwapTotal(bytes uint64)      { a.SwapTotal = bytes }

// Snapshot returns a copy that is safe to hand to another goroutine.
func (a *Adapter) Snapshot() Adapter {
	c := *a
	c.CPUsUsage = append([]float64(nil), a.CPUsUsage...)
	return c
}
