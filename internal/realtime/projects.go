package realtime

import (
	"context"

	"taskboard/internal/model"
	"taskboard/internal/store"
)

// CreateProject creates a project owned by principal, with principal as its only member.
func (e *Engine) CreateProject(ctx context.Context, principal model.Principal, name string) (*model.Project, error) {
	const op = "create project"

	name, err := model.ValidateProjectName(name)
	if err != nil {
		return nil, err
	}
	if principal == "" {
		return nil, &model.ValidationError{Field: "principal", Reason: "Sign in to create a project."}
	}

	code, err := e.newCode()
	if err != nil {
		return nil, &StoreError{Op: op, Err: err}
	}

	project := &model.Project{
		ID:         e.newID(),
		Name:       name,
		OwnerID:    principal,
		SharedCode: code,
		Members:    []string{string(principal)},
		CreatedAt:  e.now().UTC(),
	}
	if err := e.projects.Create(ctx, project); err != nil {
		err = &StoreError{Op: op, Err: err}
		e.logFailure(op, err)
		return nil, err
	}

	e.publish(ctx, store.ProjectChanges(store.ChangeCreated, project.ID)...)
	e.log.Debug().
		Str("project_id", project.ID.String()).
		Str("principal", string(principal)).
		Msg("Project created")

	out := project.Clone()
	return &out, nil
}

// JoinResult is the outcome of a successful join.
type JoinResult struct {
	Project       model.Project
	AlreadyMember bool
}

// JoinProject adds principal to the project holding code. The first project found with
// the code wins. An existing member gets AlreadyMember and nothing is written.
//
// The new member list is built from the project as just read, so two concurrent joins
// can race and one addition can be lost.
func (e *Engine) JoinProject(ctx context.Context, principal model.Principal, code string) (JoinResult, error) {
	const op = "join project"

	code, err := model.NormalizeShareCode(code)
	if err != nil {
		return JoinResult{}, err
	}
	if principal == "" {
		return JoinResult{}, &model.ValidationError{Field: "principal", Reason: "Sign in to join a project."}
	}

	found, err := e.projects.FindBySharedCode(ctx, code)
	if err != nil {
		err = &StoreError{Op: op, Err: err}
		e.logFailure(op, err)
		return JoinResult{}, err
	}
	if len(found) == 0 {
		return JoinResult{}, &NotFoundError{Resource: "code", Key: code}
	}

	project := found[0].Clone()
	if project.IsMember(principal) {
		return JoinResult{Project: project, AlreadyMember: true}, nil
	}

	members := project.WithMember(principal)
	if err := e.projects.UpdateMembers(ctx, project.ID, members); err != nil {
		err = classify(op, "project", project.ID.String(), err)
		e.logFailure(op, err)
		return JoinResult{}, err
	}
	project.Members = members

	e.publish(ctx, store.ProjectChanges(store.ChangeUpdated, project.ID)...)
	e.log.Debug().
		Str("project_id", project.ID.String()).
		Str("principal", string(principal)).
		Int("members", len(members)).
		Msg("Project joined")

	return JoinResult{Project: project}, nil
}
