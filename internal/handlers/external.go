package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GitHubRepo proxies live statistics for ?url=<github repository URL>.
func (h *Handlers) GitHubRepo(ctx *gin.Context) {
	info, err := h.github.RepoInfo(ctx.Request.Context(), ctx.Query("url"))

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, info)
}
