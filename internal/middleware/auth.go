package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/bugtracker/internal/auth"
	"github.com/monocle-dev/bugtracker/internal/models"
	"github.com/monocle-dev/bugtracker/internal/types"
	"github.com/rs/zerolog"
)

type AuthenticatedUser struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

type UserLookup interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// AuthMiddleware requires a valid bearer token for an existing user. Websocket
// handshakes may pass the token as the "token" query parameter instead.
func AuthMiddleware(tokens TokenVerifier, users UserLookup) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, ok := extractToken(ctx)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.MessageResponse{Message: "Authorization token is required"})
			return
		}

		claims, err := tokens.Verify(tokenString)

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.MessageResponse{Message: "Invalid or expired token"})
			return
		}

		user, err := users.FindByID(ctx.Request.Context(), claims.UserID)

		if err != nil {
			zerolog.Ctx(ctx.Request.Context()).Debug().Err(err).Uint("user_id", claims.UserID).Msg("token user lookup failed")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.MessageResponse{Message: "User not found"})
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:    user.ID,
			Email: user.Email,
		})
		ctx.Next()
	}
}

func extractToken(ctx *gin.Context) (string, bool) {
	authHeader := ctx.GetHeader("Authorization")

	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", false
		}
		return strings.TrimSpace(parts[1]), true
	}

	if isWebSocketUpgrade(ctx.Request) {
		if token := ctx.Query("token"); token != "" {
			return token, true
		}
	}

	return "", false
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}
