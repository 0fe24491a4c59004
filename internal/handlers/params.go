package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridehail-backend/internal/apperrors"
	"github.com/chachabrian/ridehail-backend/internal/middleware"
)

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		middleware.AbortWithError(c, apperrors.InvalidInput("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

// bindJSON reports binding failures as InvalidInput.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.AbortWithError(c, apperrors.InvalidInput("%s", err.Error()))
		return false
	}
	return true
}

func floatQuery(c *gin.Context, name string) (float64, bool) {
	v, err := strconv.ParseFloat(c.Query(name), 64)
	if err != nil {
		middleware.AbortWithError(c, apperrors.InvalidInput("%s must be a number", name))
		return 0, false
	}
	return v, true
}
