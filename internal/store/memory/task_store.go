package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"taskboard/internal/model"
	"taskboard/internal/store"

	"github.com/google/uuid"
)

var _ store.TaskStore = (*TaskStore)(nil)

// TaskStore implements store.TaskStore using in-memory storage
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*model.Task // task ID -> task
	order map[uuid.UUID][]uuid.UUID // project ID -> task IDs in creation order
}

// NewTaskStore creates an empty task store
func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks: make(map[uuid.UUID]*model.Task),
		order: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (s *TaskStore) Create(ctx context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if _, exists := s.tasks[task.ID]; exists {
		return fmt.Errorf("task %s already exists", task.ID)
	}

	stored := task.Clone()
	s.tasks[task.ID] = &stored
	s.order[task.ProjectID] = append(s.order[task.ProjectID], task.ID)
	return nil
}

func (s *TaskStore) GetByID(ctx context.Context, projectID, id uuid.UUID) (*model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.lookup(projectID, id)
	if err != nil {
		return nil, err
	}
	out := t.Clone()
	return &out, nil
}

func (s *TaskStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.order[projectID]
	tasks := make([]model.Task, 0, len(ids))
	for _, id := range ids {
		tasks = append(tasks, s.tasks[id].Clone())
	}
	model.SortTasks(tasks)
	return tasks, nil
}

func (s *TaskStore) Update(ctx context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(task.ProjectID, task.ID); err != nil {
		return err
	}
	stored := task.Clone()
	s.tasks[task.ID] = &stored
	return nil
}

func (s *TaskStore) UpdateStatus(ctx context.Context, projectID, id uuid.UUID, status model.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.lookup(projectID, id)
	if err != nil {
		return err
	}
	t.Status = status
	return nil
}

func (s *TaskStore) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(projectID, id); err != nil {
		return err
	}
	delete(s.tasks, id)
	s.order[projectID] = slices.DeleteFunc(s.order[projectID], func(other uuid.UUID) bool { return other == id })
	return nil
}

// lookup must be called with the lock held.
func (s *TaskStore) lookup(projectID, id uuid.UUID) (*model.Task, error) {
	t, ok := s.tasks[id]
	if !ok || t.ProjectID != projectID {
		return nil, store.ErrNotFound
	}
	return t, nil
}
