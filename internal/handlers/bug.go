package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/bugtracker/internal/models"
	"github.com/monocle-dev/bugtracker/internal/services"
	"github.com/monocle-dev/bugtracker/internal/types"
)

type ReportBugRequest struct {
	ProjectID      uint   `json:"projectId"`
	Title          string `json:"title" binding:"max=200"`
	Description    string `json:"description" binding:"max=10000"`
	Severity       string `json:"severity"`
	Priority       string `json:"priority"`
	ReportedCommit string `json:"reportedCommit" binding:"max=100"`
}

type ResolveBugRequest struct {
	ResolvedCommit string `json:"resolvedCommit" binding:"max=100"`
}

func (h *Handlers) ReportBug(ctx *gin.Context) {
	var body ReportBugRequest

	if !bindJSON(ctx, &body) {
		return
	}

	userID, ok := currentUserID(ctx)

	if !ok {
		return
	}

	bug, err := h.bugs.Report(ctx.Request.Context(), userID, services.ReportBugInput{
		ProjectID:      body.ProjectID,
		Title:          body.Title,
		Description:    body.Description,
		Severity:       models.Level(body.Severity),
		Priority:       models.Level(body.Priority),
		ReportedCommit: body.ReportedCommit,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewBugResponse(*bug))
}

// ListMyBugs returns bugs across every project the caller belongs to.
func (h *Handlers) ListMyBugs(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)

	if !ok {
		return
	}

	bugs, err := h.bugs.ListMine(ctx.Request.Context(), userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewBugResponses(bugs))
}

func (h *Handlers) ListProjectBugs(ctx *gin.Context) {
	projectID, ok := pathID(ctx, "projectId", "Invalid project ID")

	if !ok {
		return
	}

	userID, ok := currentUserID(ctx)

	if !ok {
		return
	}

	bugs, err := h.bugs.ListByProject(ctx.Request.Context(), userID, projectID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewBugResponses(bugs))
}

func (h *Handlers) AssignBug(ctx *gin.Context) {
	bugID, ok := pathID(ctx, "id", "Invalid bug ID")

	if !ok {
		return
	}

	userID, ok := currentUserID(ctx)

	if !ok {
		return
	}

	bug, err := h.bugs.Assign(ctx.Request.Context(), userID, bugID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewBugResponse(*bug))
}

func (h *Handlers) ResolveBug(ctx *gin.Context) {
	bugID, ok := pathID(ctx, "id", "Invalid bug ID")

	if !ok {
		return
	}

	var body ResolveBugRequest

	if !bindJSON(ctx, &body) {
		return
	}

	userID, ok := currentUserID(ctx)

	if !ok {
		return
	}

	bug, err := h.bugs.Resolve(ctx.Request.Context(), userID, bugID, body.ResolvedCommit)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewBugResponse(*bug))
}
