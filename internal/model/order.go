package model

import (
	"cmp"
	"slices"
)

// SortTasks orders tasks the way the schedule views expect them: by phase ascending with
// phase-less tasks after every phased one, then by start date. The sort is stable so ties
// keep the store's order.
func SortTasks(tasks []Task) {
	slices.SortStableFunc(tasks, compareSchedule)
}

func compareSchedule(a, b Task) int {
	switch {
	case a.Phase == nil && b.Phase != nil:
		return 1
	case a.Phase != nil && b.Phase == nil:
		return -1
	case a.Phase != nil && b.Phase != nil:
		if c := cmp.Compare(*a.Phase, *b.Phase); c != 0 {
			return c
		}
	}
	return a.StartDate.Compare(b.StartDate.Time)
}
