package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/store"

	"github.com/google/uuid"
)

// SelectorKind names the collection a subscription mirrors.
type SelectorKind int

const (
	// SelectMemberProjects mirrors every project the principal is a member of.
	SelectMemberProjects SelectorKind = iota + 1
	// SelectProject mirrors a single project document.
	SelectProject
	// SelectTasks mirrors the task collection of one project.
	SelectTasks
)

// Selector identifies what a subscription mirrors.
type Selector struct {
	Kind      SelectorKind
	Principal model.Principal
	ProjectID uuid.UUID
}

func MemberProjects(principal model.Principal) Selector {
	return Selector{Kind: SelectMemberProjects, Principal: principal}
}

func ProjectDoc(projectID uuid.UUID) Selector {
	return Selector{Kind: SelectProject, ProjectID: projectID}
}

func ProjectTasks(projectID uuid.UUID) Selector {
	return Selector{Kind: SelectTasks, ProjectID: projectID}
}

func (s Selector) String() string {
	switch s.Kind {
	case SelectMemberProjects:
		return fmt.Sprintf("projects(member=%s)", s.Principal)
	case SelectProject:
		return "project/" + s.ProjectID.String()
	case SelectTasks:
		return "project/" + s.ProjectID.String() + "/tasks"
	}
	return "unknown"
}

func (s Selector) topics() []string {
	switch s.Kind {
	case SelectMemberProjects:
		return []string{store.TopicProjects}
	case SelectProject:
		return []string{store.ProjectTopic(s.ProjectID)}
	case SelectTasks:
		return []string{store.TasksTopic(s.ProjectID)}
	}
	return nil
}

// Snapshot is a full, immutable materialisation of the selected collection. Only the
// fields matching the selector kind are populated.
type Snapshot struct {
	Selector Selector
	At       time.Time

	Projects []model.Project

	// Project is nil and Exists false once the project document is gone.
	Project *model.Project
	Exists  bool

	Tasks []model.Task
}

// Subscription pushes a fresh snapshot after every relevant change until closed.
// A consumer that falls behind only ever sees the newest snapshot.
type Subscription struct {
	selector  Selector
	snapshots chan Snapshot
	cancel    context.CancelFunc
	done      chan struct{}

	mu  sync.Mutex
	err error
}

// Snapshots is closed when the subscription ends, either by Close or by failure.
func (s *Subscription) Snapshots() <-chan Snapshot { return s.snapshots }

// Done is closed once the subscription has fully stopped.
func (s *Subscription) Done() <-chan struct{} { return s.done }

func (s *Subscription) Selector() Selector { return s.selector }

// Err returns the SubscriptionError that ended the subscription, or nil.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the subscription and waits for its goroutine to exit. Safe to call twice.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

func (s *Subscription) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = &SubscriptionError{Selector: s.selector, Err: err}
}

// deliver replaces any snapshot the consumer has not taken yet.
func (s *Subscription) deliver(snap Snapshot) {
	select {
	case <-s.snapshots:
	default:
	}
	s.snapshots <- snap
}

// Subscribe opens a push subscription. The first snapshot is loaded before any change
// notification is handled.
func (e *Engine) Subscribe(ctx context.Context, sel Selector) (*Subscription, error) {
	if sel.Kind < SelectMemberProjects || sel.Kind > SelectTasks {
		return nil, &SubscriptionError{Selector: sel, Err: errors.New("unknown selector")}
	}

	ctx, cancel := context.WithCancel(ctx)
	changes, err := e.feed.Subscribe(ctx, sel.topics()...)
	if err != nil {
		cancel()
		e.log.Error().Err(err).Stringer("selector", sel).Msg("Failed to open change feed")
		return nil, &SubscriptionError{Selector: sel, Err: err}
	}

	sub := &Subscription{
		selector:  sel,
		snapshots: make(chan Snapshot, 1),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go e.pump(ctx, sub, changes)

	e.log.Debug().Stringer("selector", sel).Msg("Subscription opened")
	return sub, nil
}

func (e *Engine) pump(ctx context.Context, sub *Subscription, changes <-chan store.Change) {
	defer close(sub.done)
	defer close(sub.snapshots)
	defer func() {
		// The feed closes changes once ctx is cancelled; waiting makes Close release it.
		sub.cancel()
		for range changes {
		}
	}()

	reload := func() bool {
		snap, err := e.load(ctx, sub.selector)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			e.log.Error().Err(err).Stringer("selector", sub.selector).Msg("Snapshot load failed")
			sub.fail(err)
			return false
		}
		sub.deliver(snap)
		return true
	}

	if !reload() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			e.log.Debug().Stringer("selector", sub.selector).Msg("Subscription closed")
			return
		case _, ok := <-changes:
			if !ok {
				if ctx.Err() == nil {
					e.log.Error().Stringer("selector", sub.selector).Msg("Change feed closed")
					sub.fail(store.ErrFeedClosed)
				}
				return
			}
			drain(changes)
			if !reload() {
				return
			}
		}
	}
}

// drain discards queued notifications; one reload covers all of them.
func drain(changes <-chan store.Change) {
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (e *Engine) load(ctx context.Context, sel Selector) (Snapshot, error) {
	snap := Snapshot{Selector: sel}
	switch sel.Kind {
	case SelectMemberProjects:
		projects, err := e.projects.ListByMember(ctx, sel.Principal)
		if err != nil {
			return snap, err
		}
		snap.Projects = projects
	case SelectProject:
		project, err := e.projects.GetByID(ctx, sel.ProjectID)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return snap, err
		default:
			snap.Project = project
			snap.Exists = true
		}
	case SelectTasks:
		tasks, err := e.tasks.ListByProject(ctx, sel.ProjectID)
		if err != nil {
			return snap, err
		}
		snap.Tasks = tasks
	}
	snap.At = e.now()
	return snap, nil
}
