package services

import (
	"context"
	"errors"
	"strings"

	"github.com/monocle-dev/bugtracker/internal/apperr"
	"github.com/monocle-dev/bugtracker/internal/models"
	"github.com/monocle-dev/bugtracker/internal/repository"
	"github.com/rs/zerolog"
)

const (
	EventBugReported = "bug.reported"
	EventBugAssigned = "bug.assigned"
	EventBugResolved = "bug.resolved"
)

// BugEvents receives a notification after each successful transition.
type BugEvents interface {
	Publish(projectID uint, event string, bugID uint)
}

type noopEvents struct{}

func (noopEvents) Publish(uint, string, uint) {}

type ReportBugInput struct {
	ProjectID      uint
	Title          string
	Description    string
	Severity       models.Level
	Priority       models.Level
	ReportedCommit string
}

type BugService struct {
	bugs        BugRepository
	memberships MembershipRepository
	events      BugEvents
}

func NewBugService(bugs BugRepository, memberships MembershipRepository, events BugEvents) *BugService {
	if events == nil {
		events = noopEvents{}
	}
	return &BugService{bugs: bugs, memberships: memberships, events: events}
}

// Report creates an open bug. Only testers of the project may report.
func (s *BugService) Report(ctx context.Context, userID uint, in ReportBugInput) (*models.Bug, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.ReportedCommit = strings.TrimSpace(in.ReportedCommit)

	if in.ProjectID == 0 || in.Title == "" || in.Description == "" || in.Severity == "" || in.Priority == "" || in.ReportedCommit == "" {
		return nil, apperr.Validation("Missing required fields")
	}

	if !in.Severity.Valid() {
		return nil, apperr.Validation("severity must be one of low, medium, high")
	}

	if !in.Priority.Valid() {
		return nil, apperr.Validation("priority must be one of low, medium, high")
	}

	membership, err := requireMember(ctx, s.memberships, userID, in.ProjectID)
	if err != nil {
		return nil, err
	}

	if membership.Role != models.RoleTester {
		return nil, apperr.Forbidden("Only testers (TST) can report bugs")
	}

	bug := &models.Bug{
		ProjectID:      in.ProjectID,
		ReporterID:     userID,
		Title:          in.Title,
		Description:    in.Description,
		Severity:       in.Severity,
		Priority:       in.Priority,
		Status:         models.BugStatusOpen,
		ReportedCommit: in.ReportedCommit,
	}

	if err := s.bugs.Create(ctx, bug); err != nil {
		return nil, apperr.Internal("failed to create bug", err)
	}

	return s.afterTransition(ctx, bug.ID, bug.ProjectID, EventBugReported)
}

// Assign claims an open bug for the calling manager. Of several concurrent
// callers exactly one succeeds; the rest get Conflict.
func (s *BugService) Assign(ctx context.Context, userID, bugID uint) (*models.Bug, error) {
	bug, err := s.loadBug(ctx, bugID)
	if err != nil {
		return nil, err
	}

	if err := requireManager(ctx, s.memberships, userID, bug.ProjectID, "Only MP can assign bugs"); err != nil {
		return nil, err
	}

	if bug.Status != models.BugStatusOpen || bug.AssignedToUserID != nil {
		return nil, apperr.Conflict("Bug is already assigned or resolved")
	}

	if err := s.bugs.Assign(ctx, bugID, userID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperr.Conflict("Bug is already assigned or resolved")
		}
		return nil, apperr.Internal("failed to assign bug", err)
	}

	return s.afterTransition(ctx, bug.ID, bug.ProjectID, EventBugAssigned)
}

// Resolve closes a bug. Only the manager it is assigned to may resolve it.
func (s *BugService) Resolve(ctx context.Context, userID, bugID uint, resolvedCommit string) (*models.Bug, error) {
	resolvedCommit = strings.TrimSpace(resolvedCommit)
	if resolvedCommit == "" {
		return nil, apperr.Validation("resolvedCommit is required")
	}

	bug, err := s.loadBug(ctx, bugID)
	if err != nil {
		return nil, err
	}

	if err := requireManager(ctx, s.memberships, userID, bug.ProjectID, "Only MP can resolve bugs"); err != nil {
		return nil, err
	}

	if bug.Status != models.BugStatusAssigned {
		return nil, apperr.Conflict("Bug must be assigned before it can be resolved")
	}

	if bug.AssignedToUserID == nil {
		return nil, apperr.Conflict("Bug is not assigned to anyone")
	}

	if *bug.AssignedToUserID != userID {
		return nil, apperr.Forbidden("Only the assigned MP can resolve this bug")
	}

	if err := s.bugs.Resolve(ctx, bugID, userID, resolvedCommit); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperr.Conflict("Bug must be assigned before it can be resolved")
		}
		return nil, apperr.Internal("failed to resolve bug", err)
	}

	return s.afterTransition(ctx, bug.ID, bug.ProjectID, EventBugResolved)
}

func (s *BugService) ListByProject(ctx context.Context, userID, projectID uint) ([]models.Bug, error) {
	if _, err := requireMember(ctx, s.memberships, userID, projectID); err != nil {
		return nil, err
	}

	bugs, err := s.bugs.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperr.Internal("failed to list bugs", err)
	}
	return bugs, nil
}

// ListMine returns bugs from every project the caller belongs to.
func (s *BugService) ListMine(ctx context.Context, userID uint) ([]models.Bug, error) {
	memberships, err := s.memberships.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to list memberships", err)
	}

	projectIDs := make([]uint, 0, len(memberships))
	for _, m := range memberships {
		projectIDs = append(projectIDs, m.ProjectID)
	}

	bugs, err := s.bugs.ListByProjects(ctx, projectIDs)
	if err != nil {
		return nil, apperr.Internal("failed to list bugs", err)
	}
	return bugs, nil
}

func (s *BugService) loadBug(ctx context.Context, bugID uint) (*models.Bug, error) {
	bug, err := s.bugs.FindByID(ctx, bugID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Bug not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load bug", err)
	}
	return bug, nil
}

func (s *BugService) afterTransition(ctx context.Context, bugID, projectID uint, event string) (*models.Bug, error) {
	zerolog.Ctx(ctx).Info().Uint("bug_id", bugID).Uint("project_id", projectID).Str("event", event).Msg("bug transition")

	s.events.Publish(projectID, event, bugID)

	return s.loadBug(ctx, bugID)
}
