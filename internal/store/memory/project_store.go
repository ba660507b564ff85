// Package memory provides in-process implementations of the store contracts for tests
// and single-node development.
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

var _ store.ProjectStore = (*ProjectStore)(nil)

// ProjectStore implements store.ProjectStore using in-memory storage
type ProjectStore struct {
	mu       sync.RWMutex
	projects map[uuid.UUID]*model.Project
	order    []uuid.UUID // creation order
}

// NewProjectStore creates an empty project store
func NewProjectStore() *ProjectStore {
	return &ProjectStore{
		projects: make(map[uuid.UUID]*model.Project),
	}
}

func (s *ProjectStore) Create(ctx context.Context, project *model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	if _, exists := s.projects[project.ID]; exists {
		return fmt.Errorf("project %s already exists", project.ID)
	}

	stored := project.Clone()
	s.projects[project.ID] = &stored
	s.order = append(s.order, project.ID)
	return nil
}

func (s *ProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := p.Clone()
	return &out, nil
}

func (s *ProjectStore) ListByMember(ctx context.Context, principal model.Principal) ([]model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := []model.Project{}
	for _, id := range s.order {
		p := s.projects[id]
		if p.IsMember(principal) {
			projects = append(projects, p.Clone())
		}
	}
	return projects, nil
}

func (s *ProjectStore) FindBySharedCode(ctx context.Context, code string) ([]model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var projects []model.Project
	for _, id := range s.order {
		if p := s.projects[id]; p.SharedCode == code {
			projects = append(projects, p.Clone())
		}
	}
	return projects, nil
}

func (s *ProjectStore) UpdateMembers(ctx context.Context, id uuid.UUID, members []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Members = slices.Clone(members)
	return nil
}

// Delete removes a project. Not part of the store contract; used to simulate a
// project disappearing underneath an open view.
func (s *ProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.projects, id)
	s.order = slices.DeleteFunc(s.order, func(other uuid.UUID) bool { return other == id })
	return nil
}
