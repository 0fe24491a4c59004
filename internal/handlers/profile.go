package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridehail-backend/internal/middleware"
	"github.com/chachabrian/ridehail-backend/internal/services"
)

// GetProfile retrieves the caller's own account
func GetProfile(profiles *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := profiles.Get(c.Request.Context(), middleware.Principal(c))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// UpdateProfile changes name, phone and, for drivers, the vehicle. Unset
// fields are left alone.
func UpdateProfile(profiles *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch services.ProfilePatch
		if !bindJSON(c, &patch) {
			return
		}

		profile, err := profiles.Update(c.Request.Context(), middleware.Principal(c), patch)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}
