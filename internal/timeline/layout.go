// Package timeline derives the Gantt grid for a set of tasks: the visible date range,
// its days and Monday-based weeks, and the geometry and style of each task bar.
package timeline

import (
	"fmt"
	"slices"
	"time"

	"taskboard/internal/model"

	"github.com/google/uuid"
)

const (
	// MinSpanDays is the smallest distance between the first and last visible day.
	MinSpanDays = 30

	// DefaultGroup holds tasks without a phase.
	DefaultGroup = "General Tasks"
)

// GridSpec is the complete layout handed to a presentation layer.
type GridSpec struct {
	MinDate   model.Date `json:"min_date"`
	MaxDate   model.Date `json:"max_date"`
	TotalDays int        `json:"total_days"`
	Days      []Day      `json:"days"`
	Weeks     []Week     `json:"weeks"`
	Groups    []Group    `json:"groups"`
	Empty     bool       `json:"empty"`
}

type Day struct {
	Date    model.Date   `json:"date"`
	Weekday time.Weekday `json:"weekday"`
	Weekend bool         `json:"weekend"`
	Label   string       `json:"label"` // D/M
}

// Week is a Monday-to-Sunday bucket. Span counts only the days inside the grid, so the
// first and last weeks may be partial.
type Week struct {
	Label string     `json:"label"`
	Start model.Date `json:"start"`
	End   model.Date `json:"end"`
	Span  int        `json:"span"`
}

type Group struct {
	Name string `json:"name"`
	Bars []Bar  `json:"bars"`
}

type Bar struct {
	TaskID       uuid.UUID    `json:"task_id"`
	Name         string       `json:"name"`
	Responsible  string       `json:"responsible"`
	Status       model.Status `json:"status"`
	StartDate    model.Date   `json:"start_date"`
	EndDate      model.Date   `json:"end_date"`
	OffsetDays   int          `json:"offset_days"`
	DurationDays int          `json:"duration_days"`
	LeftPercent  float64      `json:"left_percent"`
	WidthPercent float64      `json:"width_percent"`
	Style        Style        `json:"style"`
	StyleTag     string       `json:"style_tag"`
}

// Layout computes the grid for tasks as of now. It is pure: the same tasks and now
// always give the same grid. Tasks are expected in schedule order (model.SortTasks);
// bars keep that order inside each group.
func Layout(tasks []model.Task, now time.Time) GridSpec {
	minDate, maxDate := dateRange(tasks, now)

	grid := GridSpec{
		MinDate: minDate,
		MaxDate: maxDate,
		Days:    days(minDate, maxDate),
		Weeks:   weeks(minDate, maxDate),
		Empty:   len(tasks) == 0,
	}
	grid.TotalDays = len(grid.Days)
	grid.Groups = groups(tasks, minDate, grid.TotalDays, now)
	return grid
}

func dateRange(tasks []model.Task, now time.Time) (model.Date, model.Date) {
	if len(tasks) == 0 {
		today := model.NewDate(now)
		return today, today.AddDays(MinSpanDays)
	}

	minDate, maxDate := tasks[0].StartDate, tasks[0].EndDate
	for _, t := range tasks {
		for _, d := range []model.Date{t.StartDate, t.EndDate} {
			if d.Before(minDate.Time) {
				minDate = d
			}
			if d.After(maxDate.Time) {
				maxDate = d
			}
		}
	}
	if minDate.DaysUntil(maxDate) < MinSpanDays {
		maxDate = minDate.AddDays(MinSpanDays)
	}
	return minDate, maxDate
}

func days(minDate, maxDate model.Date) []Day {
	var out []Day
	for d := minDate; !d.After(maxDate.Time); d = d.AddDays(1) {
		wd := d.Weekday()
		out = append(out, Day{
			Date:    d,
			Weekday: wd,
			Weekend: wd == time.Saturday || wd == time.Sunday,
			Label:   fmt.Sprintf("%d/%d", d.Day(), int(d.Month())),
		})
	}
	return out
}

// mondayOnOrBefore steps back to the start of d's week.
func mondayOnOrBefore(d model.Date) model.Date {
	back := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-back)
}

func weeks(minDate, maxDate model.Date) []Week {
	var out []Week
	for start, n := mondayOnOrBefore(minDate), 1; !start.After(maxDate.Time); start, n = start.AddDays(7), n+1 {
		end := start.AddDays(6)

		first, last := start, end
		if first.Before(minDate.Time) {
			first = minDate
		}
		if last.After(maxDate.Time) {
			last = maxDate
		}

		out = append(out, Week{
			Label: fmt.Sprintf("Week %d", n),
			Start: start,
			End:   end,
			Span:  first.DaysUntil(last) + 1,
		})
	}
	return out
}

func groups(tasks []model.Task, minDate model.Date, totalDays int, now time.Time) []Group {
	byName := make(map[string][]Bar)
	for _, t := range tasks {
		name := t.PhaseName()
		if name == "" {
			name = DefaultGroup
		}
		byName[name] = append(byName[name], bar(t, minDate, totalDays, now))
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]Group, 0, len(names))
	for _, name := range names {
		out = append(out, Group{Name: name, Bars: byName[name]})
	}
	return out
}

func bar(t model.Task, minDate model.Date, totalDays int, now time.Time) Bar {
	offset := minDate.DaysUntil(t.StartDate)
	duration := t.StartDate.DaysUntil(t.EndDate) + 1
	style := Classify(t.Status, t.EndDate, now)

	return Bar{
		TaskID:       t.ID,
		Name:         t.Name,
		Responsible:  t.Responsible,
		Status:       t.Status,
		StartDate:    t.StartDate,
		EndDate:      t.EndDate,
		OffsetDays:   offset,
		DurationDays: duration,
		LeftPercent:  float64(offset) / float64(totalDays) * 100,
		WidthPercent: float64(duration) / float64(totalDays) * 100,
		Style:        style,
		StyleTag:     style.Tag(),
	}
}
