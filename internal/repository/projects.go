package repository

import (
	"context"
	"fmt"

	"github.com/monocle-dev/bugtracker/internal/models"
	"gorm.io/gorm"
)

type ProjectStore struct {
	db *gorm.DB
}

func NewProjectStore(db *gorm.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// CreateWithManager inserts the project and the creator's MP membership in
// one transaction so a project never exists without a manager.
func (s *ProjectStore) CreateWithManager(ctx context.Context, project *models.Project, userID uint) (*models.ProjectMembership, error) {
	var membership models.ProjectMembership

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return fmt.Errorf("create project: %w", err)
		}

		membership = models.ProjectMembership{
			UserID:    userID,
			ProjectID: project.ID,
			Role:      models.RoleManager,
		}

		if err := tx.Create(&membership).Error; err != nil {
			return fmt.Errorf("create manager membership: %w", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (s *ProjectStore) FindByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project

	if err := s.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, translate(err)
	}
	return &project, nil
}

func (s *ProjectStore) List(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project

	if err := s.db.WithContext(ctx).Order("id").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// Update applies the column updates and returns the reloaded project.
func (s *ProjectStore) Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.Project, error) {
	result := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("update project: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.FindByID(ctx, id)
}
