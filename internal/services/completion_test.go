package services

import (
	"testing"

	"github.com/skillpath/backend/internal/types"
)

func weeksOf(dayCounts ...int) []types.Week {
	weeks := make([]types.Week, 0, len(dayCounts))
	for i, n := range dayCounts {
		w := types.Week{WeekNumber: i + 1}
		for d := 0; d < n; d++ {
			w.Days = append(w.Days, types.DayContent{Title: "day"})
		}
		weeks = append(weeks, w)
	}
	return weeks
}

func TestTotalDays(t *testing.T) {
	tests := []struct {
		name  string
		weeks []types.Week
		want  int
	}{
		{"empty roadmap", nil, 0},
		{"single week", weeksOf(5), 5},
		{"uneven weeks", weeksOf(5, 3, 7), 15},
		{"week with no days", weeksOf(5, 0, 2), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalDays(tt.weeks); got != tt.want {
				t.Fatalf("TotalDays = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCompletionPercentage(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		want      float64
	}{
		{"zero of zero", 0, 0, 0},
		{"negative total", 3, -1, 0},
		{"none done", 0, 10, 0},
		{"half done", 5, 10, 50},
		{"all done", 10, 10, 100},
		{"third done", 1, 3, 100.0 / 3.0},
		{"over count clamps", 12, 10, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompletionPercentage(tt.completed, tt.total); got != tt.want {
				t.Fatalf("CompletionPercentage(%d, %d) = %v, want %v", tt.completed, tt.total, got, tt.want)
			}
		})
	}
}

func TestDayExists(t *testing.T) {
	weeks := weeksOf(5, 3)
	tests := []struct {
		name string
		week int
		day  int
		want bool
	}{
		{"first day", 1, 1, true},
		{"last day of week", 1, 5, true},
		{"day past end", 1, 6, false},
		{"day zero", 1, 0, false},
		{"missing week", 3, 1, false},
		{"short second week", 2, 3, true},
		{"short second week overflow", 2, 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayExists(weeks, tt.week, tt.day); got != tt.want {
				t.Fatalf("DayExists(week=%d, day=%d) = %v, want %v", tt.week, tt.day, got, tt.want)
			}
		})
	}
}

func completedDays(pairs ...[2]int) []types.CompletedDay {
	var out []types.CompletedDay
	for _, p := range pairs {
		out = append(out, types.CompletedDay{WeekNumber: p[0], DayNumber: p[1]})
	}
	return out
}

func TestIsWeekComplete(t *testing.T) {
	weeks := weeksOf(3, 2)

	if IsWeekComplete(weeks, 1, completedDays([2]int{1, 1}, [2]int{1, 2})) {
		t.Fatal("two of three days must not complete the week")
	}
	if !IsWeekComplete(weeks, 1, completedDays([2]int{1, 3}, [2]int{1, 1}, [2]int{1, 2})) {
		t.Fatal("all days done in any order completes the week")
	}
	if IsWeekComplete(weeks, 1, completedDays([2]int{2, 1}, [2]int{2, 2}, [2]int{1, 1})) {
		t.Fatal("days from another week must not count")
	}
	if IsWeekComplete(weeks, 3, completedDays([2]int{3, 1})) {
		t.Fatal("a week the roadmap does not have is never complete")
	}
	if IsWeekComplete(nil, 1, nil) {
		t.Fatal("an empty roadmap has no completable weeks")
	}
}

func TestIsRoadmapComplete(t *testing.T) {
	weeks := weeksOf(2, 2)
	if IsRoadmapComplete(weeks, []types.CompletedWeek{{WeekNumber: 1}}) {
		t.Fatal("one of two weeks must not complete the roadmap")
	}
	if !IsRoadmapComplete(weeks, []types.CompletedWeek{{WeekNumber: 2}, {WeekNumber: 1}}) {
		t.Fatal("both weeks done completes the roadmap")
	}
	if IsRoadmapComplete(nil, nil) {
		t.Fatal("an empty roadmap is never complete")
	}
}
