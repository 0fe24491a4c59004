package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridehail-backend/internal/middleware"
	"github.com/chachabrian/ridehail-backend/internal/services"
)

// RegisterFCMToken stores the caller's device token for ride pushes
func RegisterFCMToken(pusher *services.Pusher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			FCMToken string `json:"fcmToken" binding:"required"`
		}
		if !bindJSON(c, &input) {
			return
		}

		if err := pusher.RegisterToken(c.Request.Context(), middleware.Principal(c), input.FCMToken); err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "FCM token registered successfully", "pushEnabled": pusher.Enabled()})
	}
}
