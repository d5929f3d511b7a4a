package services

import (
	"github.com/skillpath/backend/internal/types"
)

// Pure completion math over a roadmap structure snapshot and a set of
// completed days. The stored completion_percentage is only ever a cache of
// these functions.

// TotalDays sums the day counts across every week of the roadmap.
func TotalDays(weeks []types.Week) int {
	total := 0
	for _, w := range weeks {
		total += len(w.Days)
	}
	return total
}

// CompletionPercentage returns 100 * completed / total, clamped to [0, 100].
func CompletionPercentage(completedDays, totalDays int) float64 {
	if totalDays <= 0 {
		return 0
	}
	pct := float64(completedDays) / float64(totalDays) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// WeekDays returns the day list for weekNumber, or false when the roadmap has
// no such week.
func WeekDays(weeks []types.Week, weekNumber int) ([]types.DayContent, bool) {
	for _, w := range weeks {
		if w.WeekNumber == weekNumber {
			return w.Days, true
		}
	}
	return nil, false
}

// DayExists reports whether dayNumber is a valid position (1-based) within
// weekNumber of the roadmap structure.
func DayExists(weeks []types.Week, weekNumber, dayNumber int) bool {
	days, ok := WeekDays(weeks, weekNumber)
	if !ok {
		return false
	}
	return dayNumber >= 1 && dayNumber <= len(days)
}

// IsWeekComplete reports whether every day of weekNumber appears in completed.
// Completed day entries are unique per (week, day), so a plain count suffices.
func IsWeekComplete(weeks []types.Week, weekNumber int, completed []types.CompletedDay) bool {
	days, ok := WeekDays(weeks, weekNumber)
	if !ok || len(days) == 0 {
		return false
	}
	done := 0
	for _, d := range completed {
		if d.WeekNumber == weekNumber {
			done++
		}
	}
	return done == len(days)
}

// IsRoadmapComplete reports whether the completed weeks cover every week of
// the roadmap.
func IsRoadmapComplete(weeks []types.Week, completedWeeks []types.CompletedWeek) bool {
	return len(weeks) > 0 && len(completedWeeks) == len(weeks)
}
