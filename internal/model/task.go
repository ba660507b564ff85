package model

import (
	"github.com/google/uuid"
)

// Status is the Kanban state of a task.
type Status string

const (
	StatusToDo       Status = "ToDo"
	StatusInProgress Status = "InProgress"
	StatusDone       Status = "Done"
)

// Statuses lists every status in board order.
var Statuses = []Status{StatusToDo, StatusInProgress, StatusDone}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Title is the column heading shown for s.
func (s Status) Title() string {
	switch s {
	case StatusToDo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

// Task is a schedulable unit owned by exactly one project.
// StartDate <= EndDate is checked on input only; the store does not re-validate.
type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Name        string    `gorm:"not null" json:"name"`
	StartDate   Date      `gorm:"type:date;not null" json:"start_date"`
	EndDate     Date      `gorm:"type:date;not null" json:"end_date"`
	Responsible string    `gorm:"not null" json:"responsible"`
	Status      Status    `gorm:"type:text;not null" json:"status"`
	Phase       *string   `json:"phase,omitempty"`
}

// PhaseName returns the phase, or "" when the task has none.
func (t *Task) PhaseName() string {
	if t.Phase == nil {
		return ""
	}
	return *t.Phase
}

// Clone returns a copy that does not share the phase pointer.
func (t Task) Clone() Task {
	if t.Phase != nil {
		phase := *t.Phase
		t.Phase = &phase
	}
	return t
}
