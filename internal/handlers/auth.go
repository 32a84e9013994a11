package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/bugtracker/internal/types"
	"github.com/monocle-dev/bugtracker/internal/utils"
)

// RegisterRequest leaves the password length to the service, which counts
// bytes the way bcrypt does.
type RegisterRequest struct {
	Email    string `json:"email" binding:"max=254"`
	Password string `json:"password"`
}

// LoginRequest carries no length rules: any mismatch is a 401.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) Register(ctx *gin.Context) {
	var body RegisterRequest

	if !bindJSON(ctx, &body) {
		return
	}

	user, err := h.auth.Register(ctx.Request.Context(), body.Email, body.Password)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewUserResponse(*user))
}

func (h *Handlers) Login(ctx *gin.Context) {
	var body LoginRequest

	if !bindJSON(ctx, &body) {
		return
	}

	token, err := h.auth.Login(ctx.Request.Context(), body.Email, body.Password)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.TokenResponse{Token: token})
}

func (h *Handlers) Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondMessage(ctx, http.StatusUnauthorized, "User not authenticated")
		return
	}

	ctx.JSON(http.StatusOK, types.UserResponse{
		ID:    currentUser.ID,
		Email: currentUser.Email,
	})
}
