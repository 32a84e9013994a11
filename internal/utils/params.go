package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetUintParam parses a positive numeric path parameter.
func GetUintParam(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, fmt.Errorf("%s not found", name)
	}

	value, err := strconv.ParseUint(raw, 10, 32)

	if err != nil || value == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}

	return uint(value), nil
}
