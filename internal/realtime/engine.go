// Package realtime mirrors projects and tasks to concurrent clients and carries their
// writes back to the store.
//
// Reads are push subscriptions of full snapshots. Writes are single store round-trips
// followed by a change notification; a writer sees its own change only through the next
// snapshot. Concurrent writes to the same document are last-write-wins.
package realtime

import (
	"context"
	"errors"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Engine is the sync service shared by every client session.
type Engine struct {
	projects store.ProjectStore
	tasks    store.TaskStore
	feed     store.Feed

	log     zerolog.Logger
	now     func() time.Time
	newCode func() (string, error)
	newID   func() uuid.UUID
}

type Option func(*Engine)

func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log.With().Str("component", "realtime").Logger() }
}

// WithClock overrides the time source used for snapshot and creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithCodeGenerator overrides share code generation.
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(e *Engine) { e.newCode = gen }
}

func NewEngine(projects store.ProjectStore, tasks store.TaskStore, feed store.Feed, opts ...Option) *Engine {
	e := &Engine{
		projects: projects,
		tasks:    tasks,
		feed:     feed,
		log:      zerolog.Nop(),
		now:      time.Now,
		newCode:  model.NewShareCode,
		newID:    uuid.New,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Projects returns the principal's projects once, without subscribing.
func (e *Engine) Projects(ctx context.Context, principal model.Principal) ([]model.Project, error) {
	projects, err := e.projects.ListByMember(ctx, principal)
	if err != nil {
		return nil, &StoreError{Op: "list projects", Err: err}
	}
	return projects, nil
}

// Project returns a project the principal is a member of.
func (e *Engine) Project(ctx context.Context, principal model.Principal, projectID uuid.UUID) (*model.Project, error) {
	return e.authorize(ctx, "get project", principal, projectID)
}

// Tasks returns the project's tasks once, in schedule order.
func (e *Engine) Tasks(ctx context.Context, principal model.Principal, projectID uuid.UUID) ([]model.Task, error) {
	if _, err := e.authorize(ctx, "list tasks", principal, projectID); err != nil {
		return nil, err
	}
	tasks, err := e.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, &StoreError{Op: "list tasks", Err: err}
	}
	return tasks, nil
}

// authorize loads the project and checks membership.
func (e *Engine) authorize(ctx context.Context, op string, principal model.Principal, projectID uuid.UUID) (*model.Project, error) {
	project, err := e.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, classify(op, "project", projectID.String(), err)
	}
	if !project.IsMember(principal) {
		return nil, &StoreError{Op: op, Err: ErrPermissionDenied}
	}
	return project, nil
}

// publish announces committed writes. A failed publish does not undo the write, so it
// is only logged; subscribers catch up on the next change.
func (e *Engine) publish(ctx context.Context, changes ...store.Change) {
	for _, change := range changes {
		if err := e.feed.Publish(ctx, change); err != nil {
			e.log.Warn().Err(err).
				Str("topic", change.Topic).
				Str("kind", string(change.Kind)).
				Msg("Failed to publish change")
		}
	}
}

func (e *Engine) logFailure(op string, err error) {
	var nf *NotFoundError
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve), errors.As(err, &nf), errors.Is(err, ErrPermissionDenied):
		e.log.Debug().Err(err).Str("op", op).Msg("Write rejected")
	default:
		e.log.Error().Err(err).Str("op", op).Msg("Write failed")
	}
}
