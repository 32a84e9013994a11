package repository

import (
	"context"
	"fmt"

	"github.com/monocle-dev/bugtracker/internal/models"
	"gorm.io/gorm"
)

type BugStore struct {
	db *gorm.DB
}

func NewBugStore(db *gorm.DB) *BugStore {
	return &BugStore{db: db}
}

func (s *BugStore) Create(ctx context.Context, bug *models.Bug) error {
	if err := s.db.WithContext(ctx).Create(bug).Error; err != nil {
		return fmt.Errorf("create bug: %w", err)
	}
	return nil
}

// FindByID loads a bug with its reporter and assignee.
func (s *BugStore) FindByID(ctx context.Context, id uint) (*models.Bug, error) {
	var bug models.Bug

	err := s.db.WithContext(ctx).
		Preload("Reporter").
		Preload("Assignee").
		First(&bug, id).Error

	if err != nil {
		return nil, translate(err)
	}
	return &bug, nil
}

func (s *BugStore) ListByProject(ctx context.Context, projectID uint) ([]models.Bug, error) {
	return s.ListByProjects(ctx, []uint{projectID})
}

func (s *BugStore) ListByProjects(ctx context.Context, projectIDs []uint) ([]models.Bug, error) {
	bugs := []models.Bug{}

	if len(projectIDs) == 0 {
		return bugs, nil
	}

	err := s.db.WithContext(ctx).
		Preload("Reporter").
		Preload("Assignee").
		Where("project_id IN ?", projectIDs).
		Order("id").
		Find(&bugs).Error

	if err != nil {
		return nil, fmt.Errorf("list bugs: %w", err)
	}
	return bugs, nil
}

// Assign moves an open, unassigned bug to assigned. The precondition is part
// of the UPDATE so that only one of several concurrent callers can win; the
// losers get ErrConflict.
func (s *BugStore) Assign(ctx context.Context, bugID, userID uint) error {
	result := s.db.WithContext(ctx).
		Model(&models.Bug{}).
		Where("id = ? AND status = ? AND assigned_to_user_id IS NULL", bugID, string(models.BugStatusOpen)).
		Updates(map[string]interface{}{
			"assigned_to_user_id": userID,
			"status":              string(models.BugStatusAssigned),
		})

	if result.Error != nil {
		return fmt.Errorf("assign bug: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// Resolve closes a bug that is assigned to userID.
func (s *BugStore) Resolve(ctx context.Context, bugID, userID uint, commit string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Bug{}).
		Where("id = ? AND status = ? AND assigned_to_user_id = ?", bugID, string(models.BugStatusAssigned), userID).
		Updates(map[string]interface{}{
			"status":          string(models.BugStatusResolved),
			"resolved_commit": commit,
		})

	if result.Error != nil {
		return fmt.Errorf("resolve bug: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}
