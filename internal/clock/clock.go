// Package clock turns the local wall-clock time into the values shown on the
// launcher home screen.
package clock

import "time"

// DateLayout renders as "Monday, Jan 02". Go layouts are locale independent.
const DateLayout = "Monday, Jan 02"

// Meridiem is the AM/PM half of a 12-hour clock reading.
type Meridiem int

const (
	AM Meridiem = iota
	PM
)

func (m Meridiem) String() string {
	if m == PM {
		return "PM"
	}
	return "AM"
}

// TimeSample is the display form of a single instant.
type TimeSample struct {
	Hour12   int
	Minute   int
	Meridiem Meridiem
	Date     string
}

// Hour12 converts a 24-hour value into the 1-12 range, mapping 0 and 12 to 12.
func Hour12(hour24 int) int {
	h := hour24 % 12
	if h == 0 {
		return 12
	}
	return h
}

// MeridiemOf reports AM for hours 0-11 and PM for 12-23.
func MeridiemOf(hour24 int) Meridiem {
	if hour24 < 12 {
		return AM
	}
	return PM
}

// DateLabel formats t with DateLayout.
func DateLabel(t time.Time) string {
	return t.Format(DateLayout)
}

// Source samples the current local time. It holds no state besides the
// function used to read "now".
type Source struct {
	now func() time.Time
}

// New creates a Source reading the local wall clock.
func New() *Source {
	return &Source{now: time.Now}
}

// NewWithNow creates a Source reading time from fn, mainly for tests.
func NewWithNow(fn func() time.Time) *Source {
	if fn == nil {
		fn = time.Now
	}
	return &Source{now: fn}
}

// Sample converts the current instant into a TimeSample.
func (s *Source) Sample() TimeSample {
	return FromTime(s.now())
}

// FromTime converts t into a TimeSample.
func FromTime(t time.Time) TimeSample {
	return TimeSample{
		Hour12:   Hour12(t.Hour()),
		Minute:   t.Minute(),
		Meridiem: MeridiemOf(t.Hour()),
		Date:     DateLabel(t),
	}
}
