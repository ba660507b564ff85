package repository

import (
	"context"

	"taskboard/internal/model"
	"taskboard/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var _ store.TaskStore = (*TaskRepository)(nil)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return mapError(r.db.WithContext(ctx).Create(task).Error)
}

// GetByID retrieves a task of the given project
func (r *TaskRepository) GetByID(ctx context.Context, projectID, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, id).
		First(&task).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &task, nil
}

// ListByProject retrieves all tasks of a project in schedule order
func (r *TaskRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Task, error) {
	tasks := []model.Task{}
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("phase IS NULL, phase, start_date").
		Find(&tasks).Error
	if err != nil {
		return nil, mapError(err)
	}
	// Collation may order phases differently from Go string comparison.
	model.SortTasks(tasks)
	return tasks, nil
}

// Update writes every editable field of the task
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("project_id = ? AND id = ?", task.ProjectID, task.ID).
		Updates(map[string]any{
			"name":        task.Name,
			"start_date":  task.StartDate,
			"end_date":    task.EndDate,
			"responsible": task.Responsible,
			"status":      task.Status,
			"phase":       task.Phase,
		})
	return rowsOrNotFound(result)
}

// UpdateStatus moves a task to another board column
func (r *TaskRepository) UpdateStatus(ctx context.Context, projectID, id uuid.UUID, status model.Status) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("project_id = ? AND id = ?", projectID, id).
		Update("status", status)
	return rowsOrNotFound(result)
}

// Delete removes a task by its ID
func (r *TaskRepository) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, id).
		Delete(&model.Task{})
	return rowsOrNotFound(result)
}

func rowsOrNotFound(result *gorm.DB) error {
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
