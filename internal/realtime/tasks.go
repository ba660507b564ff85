package realtime

import (
	"context"

	"taskboard/internal/model"
	"taskboard/internal/store"

	"github.com/google/uuid"
)

// CreateTask validates in and adds a task to the project.
func (e *Engine) CreateTask(ctx context.Context, principal model.Principal, projectID uuid.UUID, in model.TaskInput) (*model.Task, error) {
	const op = "create task"

	in, err := in.Validate()
	if err != nil {
		return nil, err
	}
	if _, err := e.authorize(ctx, op, principal, projectID); err != nil {
		e.logFailure(op, err)
		return nil, err
	}

	task := &model.Task{ID: e.newID(), ProjectID: projectID}
	in.Apply(task)
	if err := e.tasks.Create(ctx, task); err != nil {
		err = &StoreError{Op: op, Err: err}
		e.logFailure(op, err)
		return nil, err
	}

	e.publish(ctx, store.Change{Topic: store.TasksTopic(projectID), Kind: store.ChangeCreated, ID: task.ID})
	e.log.Debug().Str("project_id", projectID.String()).Str("task_id", task.ID.String()).Msg("Task created")

	out := task.Clone()
	return &out, nil
}

// UpdateTask overwrites every editable field of the task. Fields written concurrently by
// another client are replaced wholesale.
func (e *Engine) UpdateTask(ctx context.Context, principal model.Principal, projectID, taskID uuid.UUID, in model.TaskInput) (*model.Task, error) {
	const op = "update task"

	in, err := in.Validate()
	if err != nil {
		return nil, err
	}
	if _, err := e.authorize(ctx, op, principal, projectID); err != nil {
		e.logFailure(op, err)
		return nil, err
	}

	task := &model.Task{ID: taskID, ProjectID: projectID}
	in.Apply(task)
	if err := e.tasks.Update(ctx, task); err != nil {
		err = classify(op, "task", taskID.String(), err)
		e.logFailure(op, err)
		return nil, err
	}

	e.publish(ctx, store.Change{Topic: store.TasksTopic(projectID), Kind: store.ChangeUpdated, ID: taskID})
	e.log.Debug().Str("project_id", projectID.String()).Str("task_id", taskID.String()).Msg("Task updated")

	out := task.Clone()
	return &out, nil
}

func (e *Engine) DeleteTask(ctx context.Context, principal model.Principal, projectID, taskID uuid.UUID) error {
	const op = "delete task"

	if _, err := e.authorize(ctx, op, principal, projectID); err != nil {
		e.logFailure(op, err)
		return err
	}
	if err := e.tasks.Delete(ctx, projectID, taskID); err != nil {
		err = classify(op, "task", taskID.String(), err)
		e.logFailure(op, err)
		return err
	}

	e.publish(ctx, store.Change{Topic: store.TasksTopic(projectID), Kind: store.ChangeDeleted, ID: taskID})
	e.log.Debug().Str("project_id", projectID.String()).Str("task_id", taskID.String()).Msg("Task deleted")
	return nil
}

// SetTaskStatus writes only the status field. Setting the current status still writes.
func (e *Engine) SetTaskStatus(ctx context.Context, principal model.Principal, projectID, taskID uuid.UUID, status model.Status) error {
	const op = "set task status"

	if err := model.ValidateStatus(status); err != nil {
		return err
	}
	if _, err := e.authorize(ctx, op, principal, projectID); err != nil {
		e.logFailure(op, err)
		return err
	}
	if err := e.tasks.UpdateStatus(ctx, projectID, taskID, status); err != nil {
		err = classify(op, "task", taskID.String(), err)
		e.logFailure(op, err)
		return err
	}

	e.publish(ctx, store.Change{Topic: store.TasksTopic(projectID), Kind: store.ChangeUpdated, ID: taskID})
	e.log.Debug().
		Str("project_id", projectID.String()).
		Str("task_id", taskID.String()).
		Str("status", string(status)).
		Msg("Task status set")
	return nil
}
