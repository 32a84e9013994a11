package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/bugtracker/internal/services"
	"github.com/monocle-dev/bugtracker/internal/types"
)

type CreateProjectRequest struct {
	Name          string `json:"name" binding:"max=200"`
	RepositoryURL string `json:"repositoryUrl" binding:"max=500"`
}

type UpdateProjectRequest struct {
	Name          *string `json:"name" binding:"omitempty,max=200"`
	RepositoryURL *string `json:"repositoryUrl" binding:"omitempty,max=500"`
}

type AddTesterRequest struct {
	TesterEmail string `json:"testerEmail" binding:"max=254"`
}

func projectsWithRole(projects []services.ProjectWithRole) []types.ProjectWithRoleResponse {
	response := make([]types.ProjectWithRoleResponse, 0, len(projects))

	for _, p := range projects {
		response = append(response, types.ProjectWithRoleResponse{
			ProjectResponse: types.NewProjectResponse(p.Project),
			Role:            p.Role,
		})
	}

	return response
}

func (h *Handlers) CreateProject(ctx *gin.Context) {
	var body CreateProjectRequest

	if !bindJSON(ctx, &body) {
		return
	}

	userID, ok := currentUserID(ctx)

	if !ok {
		return
	}

	project, err := h.projects.Create(ctx.Request.Context(), userID, body.Name, body.RepositoryURL)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewProjectResponse(*project))
}

// ListMyProjects returns the projects the caller belongs to, with their role.
func (h *Handlers) ListMyProjects(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)

	if !ok {
		return
	}

	projects, err := h.projects.ListMine(ctx.Request.Context(), userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, projectsWithRole(projects))
}

func (h *Handlers) ListAllProjects(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)

	if !ok {
		return
	}

	projects, err := h.projects.ListAll(ctx.Request.Context(), userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, projectsWithRole(projects))
}

func (h *Handlers) UpdateProject(ctx *gin.Context) {
	projectID, ok := pathID(ctx, "id", "Invalid project ID")

	if !ok {
		return
	}

	var body UpdateProjectRequest

	if !bindJSON(ctx, &body) {
		return
	}

	userID, ok := currentUserID(ctx)

	if !ok {
		return
	}

	project, err := h.projects.Update(ctx.Request.Context(), userID, projectID, services.ProjectUpdate{
		Name:          body.Name,
		RepositoryURL: body.RepositoryURL,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewProjectResponse(*project))
}

func (h *Handlers) JoinProject(ctx *gin.Context) {
	projectID, ok := pathID(ctx, "id", "Invalid project ID")

	if !ok {
		return
	}

	userID, ok := currentUserID(ctx)

	if !ok {
		return
	}

	membership, err := h.projects.Join(ctx.Request.Context(), userID, projectID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewMembershipResponse(*membership))
}

func (h *Handlers) AddTester(ctx *gin.Context) {
	projectID, ok := pathID(ctx, "id", "Invalid project ID")

	if !ok {
		return
	}

	var body AddTesterRequest

	if !bindJSON(ctx, &body) {
		return
	}

	userID, ok := currentUserID(ctx)

	if !ok {
		return
	}

	membership, err := h.projects.AddTester(ctx.Request.Context(), userID, projectID, body.TesterEmail)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewMembershipResponse(*membership))
}
