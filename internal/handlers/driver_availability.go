package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridehail-backend/internal/apperrors"
	"github.com/chachabrian/ridehail-backend/internal/middleware"
	"github.com/chachabrian/ridehail-backend/internal/services"
)

type AvailabilityInput struct {
	IsAvailable *bool `json:"isAvailable"`
}

// UpdateDriverAvailability lets a driver go on or off duty
func UpdateDriverAvailability(profiles *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input AvailabilityInput
		if !bindJSON(c, &input) {
			return
		}
		if input.IsAvailable == nil {
			middleware.AbortWithError(c, apperrors.InvalidInput("isAvailable field is required"))
			return
		}

		profile, err := profiles.SetAvailability(c.Request.Context(), middleware.Principal(c), *input.IsAvailable)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":     "Availability updated successfully",
			"isAvailable": *input.IsAvailable,
			"driver":      profile,
		})
	}
}
