package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridehail-backend/internal/apperrors"
)

// AbortWithError writes {"error", "kind"} with the status for err's kind
// and records err on the context for the request logger.
func AbortWithError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(apperrors.HTTPStatus(kind), gin.H{
		"error": apperrors.Message(err),
		"kind":  kind,
	})
}
