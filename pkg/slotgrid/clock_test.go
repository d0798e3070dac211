package slotgrid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Clock
		wantErr bool
	}{
		{"hh:mm", "09:30", NewClock(9, 30), false},
		{"with seconds", "18:00:00", NewClock(18, 0), false},
		{"midnight", "00:00", 0, false},
		{"last minute", "23:59", NewClock(23, 59), false},
		{"single digit hour", "9:30", 0, true},
		{"hour out of range", "24:00", 0, true},
		{"minute out of range", "10:60", 0, true},
		{"garbage", "ten", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidClock)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClock_StringAndText(t *testing.T) {
	c := NewClock(7, 5)
	assert.Equal(t, "07:05", c.String())

	b, err := c.MarshalText()
	require.NoError(t, err)

	var back Clock
	require.NoError(t, back.UnmarshalText(b))
	assert.Equal(t, c, back)
}

func TestClock_On(t *testing.T) {
	loc := time.FixedZone("AR", -3*60*60)
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, loc)

	at := MustParseClock("09:30").On(date)
	assert.Equal(t, time.Date(2024, 3, 4, 9, 30, 0, 0, loc), at)
	assert.Equal(t, MustParseClock("09:30"), ClockOf(at))
}

func TestBackendDayRoundTrip(t *testing.T) {
	monday, err := FromBackendDay(0)
	require.NoError(t, err)
	assert.Equal(t, time.Monday, monday)

	sunday, err := FromBackendDay(6)
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, sunday)

	for d := 0; d <= 6; d++ {
		w, err := FromBackendDay(d)
		require.NoError(t, err)
		assert.Equal(t, d, ToBackendDay(w))
	}

	_, err = FromBackendDay(7)
	assert.ErrorIs(t, err, ErrInvalidWeekday)
}
