package timeline

import (
	"time"

	"taskboard/internal/model"
)

// Fill is the base colour class of a bar.
type Fill string

const (
	FillDone       Fill = "done"
	FillOverdue    Fill = "overdue"
	FillInProgress Fill = "in-progress"
	FillTodo       Fill = "todo"
)

// ImminentWindow is how close a deadline must be to get the imminent emphasis.
const ImminentWindow = 24 * time.Hour

// Style is the visual classification of one bar.
type Style struct {
	Fill     Fill `json:"fill"`
	Imminent bool `json:"imminent"`
}

// Tag is the presentation class string, e.g. "todo imminent".
func (s Style) Tag() string {
	if s.Imminent {
		return string(s.Fill) + " imminent"
	}
	return string(s.Fill)
}

// Classify resolves the style of a task from its status, end date and the current time.
//
// The base fill is the first of: Done, overdue (end before today), InProgress, todo.
// Imminent applies to unfinished tasks ending today or later whose end (midnight of the
// end date) is at most 24h away, and forces the todo fill. Imminent and overdue cannot
// both hold. A task due today has already passed that midnight and is still imminent,
// so an InProgress task due today shows the todo fill.
func Classify(status model.Status, end model.Date, now time.Time) Style {
	if status == model.StatusDone {
		return Style{Fill: FillDone}
	}

	today := model.NewDate(now)
	if end.Before(today.Time) {
		return Style{Fill: FillOverdue}
	}

	endsAt := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, now.Location())
	if endsAt.Sub(now) <= ImminentWindow {
		return Style{Fill: FillTodo, Imminent: true}
	}

	if status == model.StatusInProgress {
		return Style{Fill: FillInProgress}
	}
	return Style{Fill: FillTodo}
}

// LegendEntry pairs a style tag with its caption.
type LegendEntry struct {
	Tag   string `json:"tag"`
	Label string `json:"label"`
}

// Legend lists every style a bar can take.
func Legend() []LegendEntry {
	return []LegendEntry{
		{Tag: Style{Fill: FillTodo}.Tag(), Label: "To Do"},
		{Tag: Style{Fill: FillInProgress}.Tag(), Label: "In Progress"},
		{Tag: Style{Fill: FillDone}.Tag(), Label: "Completed"},
		{Tag: Style{Fill: FillOverdue}.Tag(), Label: "Overdue"},
		{Tag: Style{Fill: FillTodo, Imminent: true}.Tag(), Label: "Due within 24 hours"},
	}
}
