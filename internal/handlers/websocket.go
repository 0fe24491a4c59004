package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridehail-backend/internal/middleware"
	"github.com/chachabrian/ridehail-backend/internal/services"
)

// WebSocketHandler streams ride events for the caller's rides
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub.ServeWS(c.Writer, c.Request, middleware.Principal(c))
	}
}
