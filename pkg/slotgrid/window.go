package slotgrid

import "time"

// ResolveWindowForDate returns the rule for date's weekday, if the doctor works
// that day. With duplicate rules for one day the first one wins.
func ResolveWindowForDate(rules []WeeklyAvailabilityRule, date time.Time) (WeeklyAvailabilityRule, bool) {
	day := date.Weekday()
	for _, r := range rules {
		if r.Day == day {
			return r, true
		}
	}
	return WeeklyAvailabilityRule{}, false
}

// IsWorkingHour reports whether clock is a real slot for a resolved window.
// ok is the second result of ResolveWindowForDate.
func IsWorkingHour(rule WeeklyAvailabilityRule, ok bool, clock Clock) bool {
	return ok && rule.Contains(clock)
}
