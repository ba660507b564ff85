// Package workspace is a headless client session: it follows the principal's project
// list, opens one project at a time with its two live subscriptions, and turns user
// actions into engine writes and notices.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"taskboard/internal/board"
	"taskboard/internal/identity"
	"taskboard/internal/model"
	"taskboard/internal/notify"
	"taskboard/internal/realtime"
	"taskboard/internal/timeline"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// View is the screen the session is on.
type View int

const (
	ViewProjects View = iota
	ViewProject
)

func (v View) String() string {
	if v == ViewProject {
		return "project"
	}
	return "projects"
}

// ErrNoProject is returned by project actions while the list view is showing.
var ErrNoProject = errors.New("no project open")

type Option func(*Workspace)

func WithLogger(log zerolog.Logger) Option {
	return func(w *Workspace) { w.log = log.With().Str("component", "workspace").Logger() }
}

func WithNoticeBuffer(n int) Option {
	return func(w *Workspace) { w.notices = notify.NewQueue(n) }
}

// Workspace is safe for concurrent use.
type Workspace struct {
	engine   *realtime.Engine
	identity identity.Provider
	notices  *notify.Queue
	log      zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	updates chan struct{}

	mu        sync.Mutex
	principal model.Principal
	view      View
	projects  []model.Project
	listSub   *realtime.Subscription

	projectID  uuid.UUID
	project    *model.Project
	tasks      []model.Task
	projectSub *realtime.Subscription
	tasksSub   *realtime.Subscription
	drag       *board.Drag
}

// New consults the identity provider once and opens the project list.
func New(ctx context.Context, engine *realtime.Engine, provider identity.Provider, opts ...Option) (*Workspace, error) {
	principal, err := provider.GetOrCreatePrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("get principal: %w", err)
	}

	w := &Workspace{
		engine:    engine,
		identity:  provider,
		notices:   notify.NewQueue(32),
		log:       zerolog.Nop(),
		updates:   make(chan struct{}, 1),
		principal: principal,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.ctx, w.cancel = context.WithCancel(context.WithoutCancel(ctx))

	if err := w.openList(principal); err != nil {
		w.cancel()
		return nil, err
	}

	w.wg.Add(1)
	go w.watchPrincipal()
	return w, nil
}

// Close releases every subscription and stops background work.
func (w *Workspace) Close() {
	w.cancel()

	w.mu.Lock()
	subs := []*realtime.Subscription{w.listSub, w.projectSub, w.tasksSub}
	w.listSub, w.projectSub, w.tasksSub = nil, nil, nil
	w.mu.Unlock()

	closeAll(subs)
	w.wg.Wait()
}

// Updates signals that the session state changed. Signals coalesce.
func (w *Workspace) Updates() <-chan struct{} { return w.updates }

func (w *Workspace) Notices() <-chan notify.Notice { return w.notices.Notices() }

// Resolve answers a confirmation notice.
func (w *Workspace) Resolve(ctx context.Context, id uint64, accept bool) error {
	return w.notices.Resolve(ctx, id, accept)
}

func (w *Workspace) Principal() model.Principal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.principal
}

func (w *Workspace) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view
}

// Projects is the latest project list snapshot.
func (w *Workspace) Projects() []model.Project {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.Project, len(w.projects))
	for i, p := range w.projects {
		out[i] = p.Clone()
	}
	return out
}

// Project is the open project as of its latest snapshot, or nil.
func (w *Workspace) Project() *model.Project {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.project == nil {
		return nil
	}
	p := w.project.Clone()
	return &p
}

// Tasks is the open project's latest task snapshot.
func (w *Workspace) Tasks() []model.Task {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.Task, len(w.tasks))
	for i, t := range w.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (w *Workspace) Board() []board.Column {
	return board.Columns(w.Tasks())
}

func (w *Workspace) Timeline(now time.Time) timeline.GridSpec {
	return timeline.Layout(w.Tasks(), now)
}

func (w *Workspace) signal() {
	select {
	case w.updates <- struct{}{}:
	default:
	}
}

// fail posts err as a notice and returns it.
func (w *Workspace) fail(err error) error {
	w.notices.Error(err)
	return err
}

func closeAll(subs []*realtime.Subscription) {
	for _, sub := range subs {
		if sub != nil {
			sub.Close()
		}
	}
}

// follow applies every snapshot of sub until it ends. A failed subscription is reported
// as a notice and not restarted.
func (w *Workspace) follow(sub *realtime.Subscription, apply func(realtime.Snapshot) bool) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for snap := range sub.Snapshots() {
			if !apply(snap) {
				sub.Close()
				return
			}
			w.signal()
		}
		if err := sub.Err(); err != nil {
			w.log.Warn().Err(err).Stringer("selector", sub.Selector()).Msg("Subscription failed")
			w.notices.Error(err)
			w.signal()
		}
	}()
}

func (w *Workspace) openList(principal model.Principal) error {
	sub, err := w.engine.Subscribe(w.ctx, realtime.MemberProjects(principal))
	if err != nil {
		return w.fail(err)
	}

	w.mu.Lock()
	w.listSub = sub
	w.mu.Unlock()

	w.follow(sub, func(snap realtime.Snapshot) bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.listSub != sub {
			return false
		}
		w.projects = snap.Projects
		return true
	})
	return nil
}

// OpenProject switches to the project view. Any project view already open is torn down
// first, then exactly two subscriptions are opened: the project document and its tasks.
func (w *Workspace) OpenProject(ctx context.Context, projectID uuid.UUID) error {
	w.CloseProject()

	projectSub, err := w.engine.Subscribe(w.ctx, realtime.ProjectDoc(projectID))
	if err != nil {
		return w.fail(err)
	}
	tasksSub, err := w.engine.Subscribe(w.ctx, realtime.ProjectTasks(projectID))
	if err != nil {
		projectSub.Close()
		return w.fail(err)
	}

	w.mu.Lock()
	// A concurrent OpenProject may have installed its pair since CloseProject above.
	replaced := []*realtime.Subscription{w.projectSub, w.tasksSub}
	w.view = ViewProject
	w.projectID = projectID
	w.project = nil
	w.tasks = nil
	w.projectSub = projectSub
	w.tasksSub = tasksSub
	w.drag = board.NewDrag(w.engine, w.principal, projectID)
	w.mu.Unlock()
	closeAll(replaced)

	w.follow(projectSub, func(snap realtime.Snapshot) bool {
		w.mu.Lock()
		if w.projectSub != projectSub {
			w.mu.Unlock()
			return false
		}
		if !snap.Exists {
			w.mu.Unlock()
			w.log.Info().Str("project_id", projectID.String()).Msg("Open project disappeared")
			w.notices.Info("This project is no longer available.")
			w.CloseProject()
			return false
		}
		w.project = snap.Project
		w.mu.Unlock()
		return true
	})
	w.follow(tasksSub, func(snap realtime.Snapshot) bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.tasksSub != tasksSub {
			return false
		}
		w.tasks = snap.Tasks
		return true
	})

	w.log.Debug().Str("project_id", projectID.String()).Msg("Project opened")
	w.signal()
	return nil
}

// CloseProject releases the project view's subscriptions and returns to the list.
func (w *Workspace) CloseProject() {
	w.mu.Lock()
	subs := []*realtime.Subscription{w.projectSub, w.tasksSub}
	w.projectSub, w.tasksSub = nil, nil
	w.view = ViewProjects
	w.projectID = uuid.Nil
	w.project = nil
	w.tasks = nil
	w.drag = nil
	w.mu.Unlock()

	closeAll(subs)
	w.signal()
}

func (w *Workspace) CreateProject(ctx context.Context, name string) error {
	project, err := w.engine.CreateProject(ctx, w.Principal(), name)
	if err != nil {
		return w.fail(err)
	}
	return w.OpenProject(ctx, project.ID)
}

// JoinProject joins by share code and opens the project. Joining a project the
// principal already belongs to only posts a notice before opening it.
func (w *Workspace) JoinProject(ctx context.Context, code string) error {
	res, err := w.engine.JoinProject(ctx, w.Principal(), code)
	if err != nil {
		return w.fail(err)
	}
	if res.AlreadyMember {
		w.notices.Info("You are already a member of this project.")
	}
	return w.OpenProject(ctx, res.Project.ID)
}

func (w *Workspace) openProjectID() (model.Principal, uuid.UUID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.view != ViewProject {
		return "", uuid.Nil, ErrNoProject
	}
	return w.principal, w.projectID, nil
}

// SaveTask creates a task when taskID is uuid.Nil and updates it otherwise.
func (w *Workspace) SaveTask(ctx context.Context, taskID uuid.UUID, in model.TaskInput) error {
	principal, projectID, err := w.openProjectID()
	if err != nil {
		return err
	}
	if taskID == uuid.Nil {
		_, err = w.engine.CreateTask(ctx, principal, projectID, in)
	} else {
		_, err = w.engine.UpdateTask(ctx, principal, projectID, taskID, in)
	}
	if err != nil {
		return w.fail(err)
	}
	return nil
}

// RequestDeleteTask posts a confirmation; the task is deleted only once accepted.
func (w *Workspace) RequestDeleteTask(taskID uuid.UUID) (notify.Notice, error) {
	principal, projectID, err := w.openProjectID()
	if err != nil {
		return notify.Notice{}, err
	}
	return w.notices.Confirm("Delete this task?", func(ctx context.Context) error {
		return w.engine.DeleteTask(ctx, principal, projectID, taskID)
	}), nil
}

// PickUp starts dragging a task of the open project.
func (w *Workspace) PickUp(taskID uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.drag == nil {
		return ErrNoProject
	}
	for _, t := range w.tasks {
		if t.ID == taskID {
			w.drag.PickUp(t)
			return nil
		}
	}
	return &realtime.NotFoundError{Resource: "task", Key: taskID.String()}
}

// Drop ends the current drag on target.
func (w *Workspace) Drop(ctx context.Context, target model.Status) error {
	w.mu.Lock()
	drag := w.drag
	w.mu.Unlock()
	if drag == nil {
		return ErrNoProject
	}
	if err := drag.Drop(ctx, target); err != nil {
		return w.fail(err)
	}
	return nil
}

// MoveTask is a pick-up followed by a drop.
func (w *Workspace) MoveTask(ctx context.Context, taskID uuid.UUID, target model.Status) error {
	if err := w.PickUp(taskID); err != nil {
		return w.fail(err)
	}
	return w.Drop(ctx, target)
}

func (w *Workspace) watchPrincipal() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case principal := <-w.identity.Changes():
			w.reset(principal)
		}
	}
}

// reset drops everything tied to the previous principal and reopens the list.
func (w *Workspace) reset(principal model.Principal) {
	w.log.Info().Str("principal", string(principal)).Msg("Principal changed")

	w.mu.Lock()
	subs := []*realtime.Subscription{w.listSub, w.projectSub, w.tasksSub}
	w.listSub, w.projectSub, w.tasksSub = nil, nil, nil
	w.principal = principal
	w.view = ViewProjects
	w.projects = nil
	w.projectID = uuid.Nil
	w.project = nil
	w.tasks = nil
	w.drag = nil
	w.mu.Unlock()

	closeAll(subs)
	if err := w.openList(principal); err != nil {
		w.log.Error().Err(err).Msg("Failed to reopen project list")
	}
	w.signal()
}
