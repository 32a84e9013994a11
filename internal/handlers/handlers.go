package handlers

import (
	"context"

	"github.com/monocle-dev/bugtracker/internal/models"
	"github.com/monocle-dev/bugtracker/internal/services"
	"github.com/monocle-dev/bugtracker/internal/types"
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type ProjectService interface {
	Create(ctx context.Context, userID uint, name, repositoryURL string) (*models.Project, error)
	ListMine(ctx context.Context, userID uint) ([]services.ProjectWithRole, error)
	ListAll(ctx context.Context, userID uint) ([]services.ProjectWithRole, error)
	Update(ctx context.Context, userID, projectID uint, update services.ProjectUpdate) (*models.Project, error)
	Join(ctx context.Context, userID, projectID uint) (*models.ProjectMembership, error)
	AddTester(ctx context.Context, userID, projectID uint, testerEmail string) (*models.ProjectMembership, error)
	RequireMembership(ctx context.Context, userID, projectID uint) (*models.ProjectMembership, error)
}

type BugService interface {
	Report(ctx context.Context, userID uint, in services.ReportBugInput) (*models.Bug, error)
	Assign(ctx context.Context, userID, bugID uint) (*models.Bug, error)
	Resolve(ctx context.Context, userID, bugID uint, resolvedCommit string) (*models.Bug, error)
	ListByProject(ctx context.Context, userID, projectID uint) ([]models.Bug, error)
	ListMine(ctx context.Context, userID uint) ([]models.Bug, error)
}

type RepoInfoFetcher interface {
	RepoInfo(ctx context.Context, rawURL string) (*types.RepoInfo, error)
}

// Handlers binds the HTTP surface to the service layer.
type Handlers struct {
	auth     AuthService
	projects ProjectService
	bugs     BugService
	github   RepoInfoFetcher
	hub      *Hub
}

func New(auth AuthService, projects ProjectService, bugs BugService, github RepoInfoFetcher, hub *Hub) *Handlers {
	return &Handlers{
		auth:     auth,
		projects: projects,
		bugs:     bugs,
		github:   github,
		hub:      hub,
	}
}
