// Package board groups tasks into the three fixed Kanban columns and turns a drag
// between columns into a status write.
package board

import (
	"context"
	"errors"
	"sync"

	"taskboard/internal/model"

	"github.com/google/uuid"
)

// ErrNothingPickedUp is returned by Drop when no task is being dragged.
var ErrNothingPickedUp = errors.New("no task picked up")

// Column is one status bucket. Tasks keep the order they were given in.
type Column struct {
	Status model.Status `json:"status"`
	Title  string       `json:"title"`
	Tasks  []model.Task `json:"tasks"`
}

// Columns always returns ToDo, InProgress and Done, in that order. A task with an
// unknown status lands in no column.
func Columns(tasks []model.Task) []Column {
	cols := make([]Column, len(model.Statuses))
	index := make(map[model.Status]int, len(model.Statuses))
	for i, s := range model.Statuses {
		cols[i] = Column{Status: s, Title: s.Title(), Tasks: []model.Task{}}
		index[s] = i
	}
	for _, t := range tasks {
		if i, ok := index[t.Status]; ok {
			cols[i].Tasks = append(cols[i].Tasks, t)
		}
	}
	return cols
}

// StatusWriter performs the single-field status mutation of a move.
type StatusWriter interface {
	SetTaskStatus(ctx context.Context, principal model.Principal, projectID, taskID uuid.UUID, status model.Status) error
}

// Drag is the two-phase move interaction: PickUp remembers the task, Drop writes its
// new status. The zero value is not usable; use NewDrag.
type Drag struct {
	writer    StatusWriter
	principal model.Principal
	projectID uuid.UUID

	mu     sync.Mutex
	taskID uuid.UUID
	origin model.Status
	active bool
}

func NewDrag(writer StatusWriter, principal model.Principal, projectID uuid.UUID) *Drag {
	return &Drag{writer: writer, principal: principal, projectID: projectID}
}

// PickUp starts dragging task, replacing any drag in progress.
func (d *Drag) PickUp(task model.Task) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.taskID = task.ID
	d.origin = task.Status
	d.active = true
}

// Picked reports the dragged task and its origin column.
func (d *Drag) Picked() (uuid.UUID, model.Status, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.taskID, d.origin, d.active
}

// Cancel abandons the drag without writing.
func (d *Drag) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = false
}

// Drop ends the drag on target. Dropping on the origin column still writes. The drag is
// over whether or not the write succeeds.
func (d *Drag) Drop(ctx context.Context, target model.Status) error {
	if err := model.ValidateStatus(target); err != nil {
		return err
	}

	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return ErrNothingPickedUp
	}
	taskID := d.taskID
	d.active = false
	d.mu.Unlock()

	return d.writer.SetTaskStatus(ctx, d.principal, d.projectID, taskID, target)
}
