package slotgrid

import (
	"fmt"
	"time"
)

// The backend stores days as 0=Monday..6=Sunday while this package uses
// time.Weekday (0=Sunday). These two functions are the only place where the
// backend numbering is known.

// FromBackendDay converts a backend day number into a time.Weekday.
func FromBackendDay(day int) (time.Weekday, error) {
	if day < 0 || day > 6 {
		return 0, fmt.Errorf("%w: backend day %d", ErrInvalidWeekday, day)
	}
	return time.Weekday((day + 1) % 7), nil
}

// ToBackendDay converts a time.Weekday into the backend's day number.
func ToBackendDay(day time.Weekday) int {
	return (int(day) + 6) % 7
}
