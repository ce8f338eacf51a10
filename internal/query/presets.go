package query

import (
	"time"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
)

// fiscalStartMonth is the first month of the fiscal year
const fiscalStartMonth = time.April

// Range is an inclusive time interval
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the range, bounds included
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Resolve converts a preset into a concrete range anchored at now, in now's
// location. The second return value is false for unknown presets.
func Resolve(preset domain.DatePreset, now time.Time) (Range, bool) {
	today := startOfDay(now)
	endOfToday := endOfDay(now)

	switch preset {
	case domain.PresetToday:
		return Range{Start: today, End: endOfToday}, true
	case domain.PresetYesterday:
		start := today.AddDate(0, 0, -1)
		return Range{Start: start, End: endOfDay(start)}, true
	case domain.PresetThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Range{Start: start, End: endOfToday}, true
	case domain.PresetThisYear:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return Range{Start: start, End: endOfToday}, true
	case domain.PresetLast7Days:
		return Range{Start: today.AddDate(0, 0, -7), End: endOfToday}, true
	case domain.PresetLast30Days:
		return Range{Start: today.AddDate(0, 0, -30), End: endOfToday}, true
	case domain.PresetLast90Days:
		return Range{Start: today.AddDate(0, 0, -90), End: endOfToday}, true
	case domain.PresetLast180Days:
		return Range{Start: today.AddDate(0, 0, -180), End: endOfToday}, true
	case domain.PresetLast365Days:
		return Range{Start: today.AddDate(0, 0, -365), End: endOfToday}, true
	case domain.PresetThisFiscalYear:
		start := time.Date(fiscalYear(now), fiscalStartMonth, 1, 0, 0, 0, 0, now.Location())
		return Range{Start: start, End: endOfToday}, true
	case domain.PresetLastFiscalYear:
		fy := fiscalYear(now)
		start := time.Date(fy-1, fiscalStartMonth, 1, 0, 0, 0, 0, now.Location())
		// Day 0 of the start month is the last day of the month before it
		end := endOfDay(time.Date(fy, fiscalStartMonth, 0, 0, 0, 0, 0, now.Location()))
		return Range{Start: start, End: end}, true
	}
	return Range{}, false
}

// fiscalYear returns the calendar year in which the fiscal year containing t
// started.
func fiscalYear(t time.Time) int {
	if t.Month() >= fiscalStartMonth {
		return t.Year()
	}
	return t.Year() - 1
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}
