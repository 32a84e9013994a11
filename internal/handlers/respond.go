package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/bugtracker/internal/apperr"
	"github.com/monocle-dev/bugtracker/internal/types"
	"github.com/monocle-dev/bugtracker/internal/utils"
	"github.com/rs/zerolog"
)

func respondError(ctx *gin.Context, err error) {
	status := apperr.StatusCode(err)

	if apperr.KindOf(err) == apperr.KindInternal {
		zerolog.Ctx(ctx.Request.Context()).Error().Err(err).Msg("request failed")
		_ = ctx.Error(err)
	}

	ctx.JSON(status, types.MessageResponse{Message: apperr.PublicMessage(err)})
}

func respondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, types.MessageResponse{Message: message})
}

// bindJSON decodes the body into req and answers 400 on failure. A value of
// the wrong JSON type names the offending field.
func bindJSON(ctx *gin.Context, req interface{}) bool {
	err := ctx.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	zerolog.Ctx(ctx.Request.Context()).Debug().Err(err).Msg("invalid request body")

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		respondMessage(ctx, http.StatusBadRequest, fmt.Sprintf("Invalid type for field %s: expected %s", typeErr.Field, jsonKind(typeErr.Type)))
		return false
	}

	respondMessage(ctx, http.StatusBadRequest, "Invalid request body")
	return false
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Ptr:
		return jsonKind(t.Elem())
	default:
		return "object"
	}
}

func currentUserID(ctx *gin.Context) (uint, bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondMessage(ctx, http.StatusUnauthorized, "User not authenticated")
		return 0, false
	}

	return userID, true
}

func pathID(ctx *gin.Context, name, message string) (uint, bool) {
	id, err := utils.GetUintParam(ctx, name)

	if err != nil {
		respondMessage(ctx, http.StatusBadRequest, message)
		return 0, false
	}

	return id, true
}
