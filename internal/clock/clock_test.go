package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHour12Range(t *testing.T) {
	for h := 0; h < 24; h++ {
		got := Hour12(h)
		assert.GreaterOrEqual(t, got, 1, "hour %d", h)
		assert.LessOrEqual(t, got, 12, "hour %d", h)
	}

	assert.Equal(t, 12, Hour12(0))
	assert.Equal(t, 12, Hour12(12))
	assert.Equal(t, 1, Hour12(13))
	assert.Equal(t, 11, Hour12(23))
}

func TestMeridiemOf(t *testing.T) {
	for h := 0; h < 24; h++ {
		if h < 12 {
			assert.Equal(t, AM, MeridiemOf(h), "hour %d", h)
		} else {
			assert.Equal(t, PM, MeridiemOf(h), "hour %d", h)
		}
	}
	assert.Equal(t, "AM", AM.String())
	assert.Equal(t, "PM", PM.String())
}

func TestSample(t *testing.T) {
	tests := []struct {
		name     string
		at       time.Time
		hour12   int
		minute   int
		meridiem Meridiem
		date     string
	}{
		{
			name:     "early afternoon",
			at:       time.Date(2024, time.March, 5, 13, 5, 0, 0, time.Local),
			hour12:   1,
			minute:   5,
			meridiem: PM,
			date:     "Tuesday, Mar 05",
		},
		{
			name:     "just after midnight",
			at:       time.Date(2024, time.March, 5, 0, 30, 0, 0, time.Local),
			hour12:   12,
			minute:   30,
			meridiem: AM,
			date:     "Tuesday, Mar 05",
		},
		{
			name:     "noon",
			at:       time.Date(2023, time.December, 31, 12, 0, 59, 0, time.Local),
			hour12:   12,
			minute:   0,
			meridiem: PM,
			date:     "Sunday, Dec 31",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewWithNow(func() time.Time { return tt.at })
			s := src.Sample()
			assert.Equal(t, tt.hour12, s.Hour12)
			assert.Equal(t, tt.minute, s.Minute)
			assert.Equal(t, tt.meridiem, s.Meridiem)
			assert.Equal(t, tt.date, s.Date)
		})
	}
}

func TestNewWithNilNowFallsBackToWallClock(t *testing.T) {
	s := NewWithNow(nil).Sample()
	assert.NotEmpty(t, s.Date)
	assert.GreaterOrEqual(t, s.Hour12, 1)
}
