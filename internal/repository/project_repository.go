package repository

import (
	"context"

	"taskboard/internal/model"
	"taskboard/internal/store"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var _ store.ProjectStore = (*ProjectRepository)(nil)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a new project. The caller assigns the id.
func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return mapError(r.db.WithContext(ctx).Create(project).Error)
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		return nil, mapError(err)
	}
	return &project, nil
}

// ListByMember returns the projects whose members array contains principal
func (r *ProjectRepository) ListByMember(ctx context.Context, principal model.Principal) ([]model.Project, error) {
	projects := []model.Project{}
	err := r.db.WithContext(ctx).
		Where("? = ANY(members)", string(principal)).
		Order("created_at").
		Find(&projects).Error
	return projects, mapError(err)
}

// FindBySharedCode returns every project using code, oldest first
func (r *ProjectRepository) FindBySharedCode(ctx context.Context, code string) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Where("shared_code = ?", code).
		Order("created_at").
		Find(&projects).Error
	return projects, mapError(err)
}

// UpdateMembers overwrites the members column and nothing else
func (r *ProjectRepository) UpdateMembers(ctx context.Context, id uuid.UUID, members []string) error {
	result := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ?", id).
		Update("members", pq.StringArray(members))

	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
