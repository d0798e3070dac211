package slotgrid

// GenerateMasterGrid returns the shared time axis for a rule set: every GridStep
// from the earliest start to the latest end (exclusive). Rules may differ per
// day; the axis spans all of them so that day columns line up.
func GenerateMasterGrid(rules []WeeklyAvailabilityRule) []Clock {
	if len(rules) == 0 {
		return nil
	}

	minStart, maxEnd := rules[0].Start, rules[0].End
	for _, r := range rules[1:] {
		if r.Start < minStart {
			minStart = r.Start
		}
		if r.End > maxEnd {
			maxEnd = r.End
		}
	}

	var times []Clock
	for t := minStart; t < maxEnd; t = t.Add(GridStep) {
		times = append(times, t)
	}
	return times
}
