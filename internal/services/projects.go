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

const GitHubPrefix = "https://github.com/"

// ProjectWithRole pairs a project with the caller's role in it, nil for
// non-members.
type ProjectWithRole struct {
	Project models.Project
	Role    *models.Role
}

// ProjectUpdate carries optional fields; nil or blank fields are left alone.
type ProjectUpdate struct {
	Name          *string
	RepositoryURL *string
}

type ProjectService struct {
	projects    ProjectRepository
	memberships MembershipRepository
	users       UserRepository
}

func NewProjectService(projects ProjectRepository, memberships MembershipRepository, users UserRepository) *ProjectService {
	return &ProjectService{projects: projects, memberships: memberships, users: users}
}

func ValidateRepositoryURL(url string) error {
	if !strings.HasPrefix(url, GitHubPrefix) || len(url) == len(GitHubPrefix) {
		return apperr.Validation("repositoryUrl must be a GitHub repository URL (" + GitHubPrefix + "...)")
	}
	return nil
}

func (s *ProjectService) Create(ctx context.Context, userID uint, name, repositoryURL string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	repositoryURL = strings.TrimSpace(repositoryURL)

	if name == "" || repositoryURL == "" {
		return nil, apperr.Validation("name and repositoryUrl are required")
	}

	if err := ValidateRepositoryURL(repositoryURL); err != nil {
		return nil, err
	}

	project := &models.Project{Name: name, RepositoryURL: repositoryURL}

	if _, err := s.projects.CreateWithManager(ctx, project, userID); err != nil {
		return nil, apperr.Internal("failed to create project", err)
	}

	zerolog.Ctx(ctx).Info().Uint("project_id", project.ID).Uint("user_id", userID).Msg("project created")

	return project, nil
}

func (s *ProjectService) ListMine(ctx context.Context, userID uint) ([]ProjectWithRole, error) {
	memberships, err := s.memberships.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to list memberships", err)
	}

	result := make([]ProjectWithRole, 0, len(memberships))
	for _, m := range memberships {
		role := m.Role
		result = append(result, ProjectWithRole{Project: m.Project, Role: &role})
	}
	return result, nil
}

func (s *ProjectService) ListAll(ctx context.Context, userID uint) ([]ProjectWithRole, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list projects", err)
	}

	memberships, err := s.memberships.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to list memberships", err)
	}

	roles := make(map[uint]models.Role, len(memberships))
	for _, m := range memberships {
		roles[m.ProjectID] = m.Role
	}

	result := make([]ProjectWithRole, 0, len(projects))
	for _, p := range projects {
		entry := ProjectWithRole{Project: p}
		if role, ok := roles[p.ID]; ok {
			entry.Role = &role
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *ProjectService) Update(ctx context.Context, userID, projectID uint, update ProjectUpdate) (*models.Project, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := requireManager(ctx, s.memberships, userID, projectID, "Only MP can edit the project"); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if update.Name != nil {
		if name := strings.TrimSpace(*update.Name); name != "" {
			updates["name"] = name
		}
	}

	if update.RepositoryURL != nil {
		if url := strings.TrimSpace(*update.RepositoryURL); url != "" {
			if err := ValidateRepositoryURL(url); err != nil {
				return nil, err
			}
			updates["repository_url"] = url
		}
	}

	if len(updates) == 0 {
		return project, nil
	}

	updated, err := s.projects.Update(ctx, projectID, updates)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Project not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to update project", err)
	}

	return updated, nil
}

// Join enrolls the caller as a tester.
func (s *ProjectService) Join(ctx context.Context, userID, projectID uint) (*models.ProjectMembership, error) {
	if _, err := s.loadProject(ctx, projectID); err != nil {
		return nil, err
	}

	existing, err := findMembership(ctx, s.memberships, userID, projectID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("You are already a member of this project")
	}

	return s.addTester(ctx, userID, projectID, "You are already a member of this project")
}

// AddTester enrolls an existing user as a tester. Only the project's MP may
// call it.
func (s *ProjectService) AddTester(ctx context.Context, userID, projectID uint, testerEmail string) (*models.ProjectMembership, error) {
	testerEmail = NormalizeEmail(testerEmail)
	if testerEmail == "" {
		return nil, apperr.Validation("testerEmail is required")
	}

	// a missing project has no MP, so it answers 403 like a foreign one
	if err := requireManager(ctx, s.memberships, userID, projectID, "Only MP can add testers"); err != nil {
		return nil, err
	}

	tester, err := s.users.FindByEmail(ctx, testerEmail)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Tester not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load tester", err)
	}

	existing, err := findMembership(ctx, s.memberships, tester.ID, projectID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("User already in project")
	}

	return s.addTester(ctx, tester.ID, projectID, "User already in project")
}

// RequireMembership fails with Forbidden when the caller is not a member.
func (s *ProjectService) RequireMembership(ctx context.Context, userID, projectID uint) (*models.ProjectMembership, error) {
	return requireMember(ctx, s.memberships, userID, projectID)
}

func (s *ProjectService) addTester(ctx context.Context, userID, projectID uint, conflictMsg string) (*models.ProjectMembership, error) {
	membership := &models.ProjectMembership{
		UserID:    userID,
		ProjectID: projectID,
		Role:      models.RoleTester,
	}

	if err := s.memberships.Create(ctx, membership); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperr.Conflict(conflictMsg)
		}
		return nil, apperr.Internal("failed to create membership", err)
	}

	zerolog.Ctx(ctx).Info().Uint("project_id", projectID).Uint("user_id", userID).Msg("tester added")

	return membership, nil
}

func (s *ProjectService) loadProject(ctx context.Context, projectID uint) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Project not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load project", err)
	}
	return project, nil
}
