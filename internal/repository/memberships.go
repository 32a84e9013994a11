package repository

import (
	"context"
	"fmt"

	"github.com/monocle-dev/bugtracker/internal/models"
	"gorm.io/gorm"
)

type MembershipStore struct {
	db *gorm.DB
}

func NewMembershipStore(db *gorm.DB) *MembershipStore {
	return &MembershipStore{db: db}
}

func (s *MembershipStore) Find(ctx context.Context, userID, projectID uint) (*models.ProjectMembership, error) {
	var membership models.ProjectMembership

	err := s.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		First(&membership).Error

	if err != nil {
		return nil, translate(err)
	}
	return &membership, nil
}

// Create inserts a membership. The (user, project) unique index turns a
// concurrent duplicate into ErrConflict.
func (s *MembershipStore) Create(ctx context.Context, membership *models.ProjectMembership) error {
	if err := s.db.WithContext(ctx).Create(membership).Error; err != nil {
		if err = translate(err); err == ErrConflict {
			return err
		}
		return fmt.Errorf("create membership: %w", err)
	}
	return nil
}

func (s *MembershipStore) ListByUser(ctx context.Context, userID uint) ([]models.ProjectMembership, error) {
	var memberships []models.ProjectMembership

	err := s.db.WithContext(ctx).
		Preload("Project").
		Where("user_id = ?", userID).
		Order("project_id").
		Find(&memberships).Error

	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return memberships, nil
}
