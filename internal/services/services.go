// Package services holds the authorization and workflow rules of the bug
// tracker. Every operation takes the authenticated caller's user ID and
// checks, in order: input, existence, membership, role, state, ownership.
package services

import (
	"context"
	"errors"

	"github.com/monocle-dev/bugtracker/internal/apperr"
	"github.com/monocle-dev/bugtracker/internal/models"
	"github.com/monocle-dev/bugtracker/internal/repository"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type ProjectRepository interface {
	CreateWithManager(ctx context.Context, project *models.Project, userID uint) (*models.ProjectMembership, error)
	FindByID(ctx context.Context, id uint) (*models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.Project, error)
}

type MembershipRepository interface {
	Find(ctx context.Context, userID, projectID uint) (*models.ProjectMembership, error)
	Create(ctx context.Context, membership *models.ProjectMembership) error
	ListByUser(ctx context.Context, userID uint) ([]models.ProjectMembership, error)
}

type BugRepository interface {
	Create(ctx context.Context, bug *models.Bug) error
	FindByID(ctx context.Context, id uint) (*models.Bug, error)
	ListByProject(ctx context.Context, projectID uint) ([]models.Bug, error)
	ListByProjects(ctx context.Context, projectIDs []uint) ([]models.Bug, error)
	Assign(ctx context.Context, bugID, userID uint) error
	Resolve(ctx context.Context, bugID, userID uint, commit string) error
}

// findMembership returns nil without error when the user is not a member.
func findMembership(ctx context.Context, memberships MembershipRepository, userID, projectID uint) (*models.ProjectMembership, error) {
	membership, err := memberships.Find(ctx, userID, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("failed to load membership", err)
	}
	return membership, nil
}

func requireMember(ctx context.Context, memberships MembershipRepository, userID, projectID uint) (*models.ProjectMembership, error) {
	membership, err := findMembership(ctx, memberships, userID, projectID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, apperr.Forbidden("You are not a member of this project")
	}
	return membership, nil
}

func requireManager(ctx context.Context, memberships MembershipRepository, userID, projectID uint, msg string) error {
	membership, err := findMembership(ctx, memberships, userID, projectID)
	if err != nil {
		return err
	}
	if membership == nil || membership.Role != models.RoleManager {
		return apperr.Forbidden(msg)
	}
	return nil
}
