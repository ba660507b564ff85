// Package store defines the persistence contract the sync engine relies on: document
// stores for projects and tasks, and a change feed that announces writes.
//
// Implementations only promise per-document consistency. Nothing here is transactional
// across documents, and writes are last-write-wins.
package store

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a project or task document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrFeedClosed is returned when subscribing to a feed that has been shut down.
	ErrFeedClosed = errors.New("feed closed")

	// ErrPermissionDenied is returned when the backend refuses the operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrConflict is returned when a write collides with a constraint or a concurrent transaction.
	ErrConflict = errors.New("write conflict")

	// ErrUnavailable is returned when the backend cannot be reached.
	ErrUnavailable = errors.New("store unavailable")
)

// ProjectStore persists project documents.
type ProjectStore interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	// ListByMember returns the projects whose member list contains principal, oldest first.
	ListByMember(ctx context.Context, principal model.Principal) ([]model.Project, error)
	// FindBySharedCode is a one-shot query; it may return several projects on a code collision.
	FindBySharedCode(ctx context.Context, code string) ([]model.Project, error)
	// UpdateMembers overwrites only the members field of the project.
	UpdateMembers(ctx context.Context, id uuid.UUID, members []string) error
}

// TaskStore persists the tasks of each project.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, projectID, id uuid.UUID) (*model.Task, error)
	// ListByProject returns the project's tasks in schedule order (see model.SortTasks).
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Task, error)
	// Update writes every editable field of the task.
	Update(ctx context.Context, task *model.Task) error
	// UpdateStatus writes only the status field.
	UpdateStatus(ctx context.Context, projectID, id uuid.UUID, status model.Status) error
	Delete(ctx context.Context, projectID, id uuid.UUID) error
}

// Feed fans change notifications out to subscribers, possibly across processes.
type Feed interface {
	Publish(ctx context.Context, change Change) error
	// Subscribe delivers changes for the given topics until ctx is done. The returned
	// channel is closed when ctx ends or when the feed fails; callers tell the two apart
	// by checking ctx.Err().
	Subscribe(ctx context.Context, topics ...string) (<-chan Change, error)
}
