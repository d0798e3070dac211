package slotgrid

import (
	"errors"
	"fmt"
	"time"
)

// DefaultSlotDurationMinutes is used when a rule does not specify a duration.
const DefaultSlotDurationMinutes = 30

var (
	ErrInvalidWeekday = errors.New("day of week must be between 0 and 6")
	ErrEmptyWindow    = errors.New("start time must be before end time")
	ErrInvalidSlot    = errors.New("slot duration must be positive")
	ErrDuplicateDay   = errors.New("more than one availability rule for the same day")
)

// WeeklyAvailabilityRule is one recurring working window of a doctor.
// Day uses Go's numbering (Sunday = 0); see FromBackendDay for the backend's.
type WeeklyAvailabilityRule struct {
	Day                 time.Weekday `json:"day_of_week"`
	Start               Clock        `json:"start_time"`
	End                 Clock        `json:"end_time"`
	SlotDurationMinutes int          `json:"slot_duration_min"`
}

// SlotDuration returns the configured booking duration, falling back to the default.
func (r WeeklyAvailabilityRule) SlotDuration() time.Duration {
	if r.SlotDurationMinutes <= 0 {
		return DefaultSlotDurationMinutes * time.Minute
	}
	return time.Duration(r.SlotDurationMinutes) * time.Minute
}

// Contains reports whether clock lies inside [Start, End).
func (r WeeklyAvailabilityRule) Contains(clock Clock) bool {
	return r.Start <= clock && clock < r.End
}

// Validate checks a single rule.
func (r WeeklyAvailabilityRule) Validate() error {
	if r.Day < time.Sunday || r.Day > time.Saturday {
		return fmt.Errorf("%w: got %d", ErrInvalidWeekday, r.Day)
	}
	if !r.Start.Valid() || !r.End.Valid() {
		return ErrInvalidClock
	}
	if r.Start >= r.End {
		return fmt.Errorf("%w: %s-%s", ErrEmptyWindow, r.Start, r.End)
	}
	if r.SlotDurationMinutes < 0 {
		return ErrInvalidSlot
	}
	return nil
}

// ValidateRuleSet validates every rule and rejects two rules on the same day.
// The grid functions tolerate duplicates; this is meant for data entry.
func ValidateRuleSet(rules []WeeklyAvailabilityRule) error {
	seen := make(map[time.Weekday]bool, len(rules))
	for i, r := range rules {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
		if seen[r.Day] {
			return fmt.Errorf("rule %d: %w (%s)", i, ErrDuplicateDay, r.Day)
		}
		seen[r.Day] = true
	}
	return nil
}
