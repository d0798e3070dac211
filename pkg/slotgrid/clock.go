// Package slotgrid builds the weekly appointment grid shown to doctors and
// patients: a shared time axis derived from a doctor's weekly availability,
// per-day working windows, and a per-cell status classification.
//
// Everything in this package is pure. Callers inject the current time and the
// appointment snapshot; nothing here reads the wall clock or performs I/O.
package slotgrid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GridStep is the fixed spacing of the master grid. It is a display constant and
// does not follow any rule's slot duration.
const GridStep = 30 * time.Minute

const minutesPerDay = 24 * 60

var ErrInvalidClock = errors.New("invalid time of day")

// Clock is a wall-clock time of day expressed in minutes since midnight.
type Clock int

// NewClock returns the clock for hour:minute.
func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ParseClock parses "HH:MM" (or "HH:MM:SS", seconds ignored) in 24h notation.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	for _, p := range parts {
		if len(p) != 2 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
	}

	return NewClock(h, m), nil
}

// MustParseClock is ParseClock for constants and tests.
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ClockOf returns the time of day of t in t's location.
func ClockOf(t time.Time) Clock {
	return NewClock(t.Hour(), t.Minute())
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

// Valid reports whether c falls inside a single day.
func (c Clock) Valid() bool {
	return c >= 0 && c < minutesPerDay
}

// Add returns c shifted by d, truncated to whole minutes.
func (c Clock) Add(d time.Duration) Clock {
	return c + Clock(d/time.Minute)
}

// On returns the instant at which c occurs on the calendar day of date.
func (c Clock) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, date.Location())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
