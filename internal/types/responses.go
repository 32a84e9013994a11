package types

import (
	"time"

	"github.com/monocle-dev/bugtracker/internal/models"
)

type UserResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type ProjectResponse struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	RepositoryURL string    `json:"repositoryUrl"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ProjectWithRoleResponse carries the caller's role, null for non-members.
type ProjectWithRoleResponse struct {
	ProjectResponse
	Role *models.Role `json:"role"`
}

type MembershipResponse struct {
	ID        uint        `json:"id"`
	UserID    uint        `json:"userId"`
	ProjectID uint        `json:"projectId"`
	Role      models.Role `json:"role"`
}

type BugResponse struct {
	ID               uint             `json:"id"`
	ProjectID        uint             `json:"projectId"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Severity         models.Level     `json:"severity"`
	Priority         models.Level     `json:"priority"`
	Status           models.BugStatus `json:"status"`
	ReportedCommit   string           `json:"reportedCommit"`
	ResolvedCommit   *string          `json:"resolvedCommit"`
	ReporterID       uint             `json:"reporterId"`
	AssignedToUserID *uint            `json:"assignedToUserId"`
	Reporter         *UserResponse    `json:"reporter"`
	Assignee         *UserResponse    `json:"assignee"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func NewUserResponse(user models.User) UserResponse {
	return UserResponse{ID: user.ID, Email: user.Email}
}

func NewProjectResponse(project models.Project) ProjectResponse {
	return ProjectResponse{
		ID:            project.ID,
		Name:          project.Name,
		RepositoryURL: project.RepositoryURL,
		CreatedAt:     project.CreatedAt,
		UpdatedAt:     project.UpdatedAt,
	}
}

func NewMembershipResponse(membership models.ProjectMembership) MembershipResponse {
	return MembershipResponse{
		ID:        membership.ID,
		UserID:    membership.UserID,
		ProjectID: membership.ProjectID,
		Role:      membership.Role,
	}
}

func NewBugResponse(bug models.Bug) BugResponse {
	resp := BugResponse{
		ID:               bug.ID,
		ProjectID:        bug.ProjectID,
		Title:            bug.Title,
		Description:      bug.Description,
		Severity:         bug.Severity,
		Priority:         bug.Priority,
		Status:           bug.Status,
		ReportedCommit:   bug.ReportedCommit,
		ResolvedCommit:   bug.ResolvedCommit,
		ReporterID:       bug.ReporterID,
		AssignedToUserID: bug.AssignedToUserID,
		CreatedAt:        bug.CreatedAt,
		UpdatedAt:        bug.UpdatedAt,
	}

	// relations are only present when preloaded
	if bug.Reporter.ID != 0 {
		reporter := NewUserResponse(bug.Reporter)
		resp.Reporter = &reporter
	}

	if bug.Assignee != nil && bug.Assignee.ID != 0 {
		assignee := NewUserResponse(*bug.Assignee)
		resp.Assignee = &assignee
	}

	return resp
}

func NewBugResponses(bugs []models.Bug) []BugResponse {
	resp := make([]BugResponse, 0, len(bugs))
	for _, bug := range bugs {
		resp = append(resp, NewBugResponse(bug))
	}
	return resp
}
