package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridehail-backend/internal/middleware"
	"github.com/chachabrian/ridehail-backend/internal/services"
	"github.com/chachabrian/ridehail-backend/pkg/utils"
)

func GetFareConfig(fares *services.FareService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := fares.Current(c.Request.Context())
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, cfg)
	}
}

// EstimateFare prices a trip with the same routine booking uses
func EstimateFare(fares *services.FareService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var pickup, drop utils.Point
		var ok bool
		if pickup.Lat, ok = floatQuery(c, "pickupLat"); !ok {
			return
		}
		if pickup.Lng, ok = floatQuery(c, "pickupLng"); !ok {
			return
		}
		if drop.Lat, ok = floatQuery(c, "dropLat"); !ok {
			return
		}
		if drop.Lng, ok = floatQuery(c, "dropLng"); !ok {
			return
		}

		quote, err := fares.Estimate(c.Request.Context(), pickup, drop)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, quote)
	}
}

func UpdateFareConfig(fares *services.FareService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch services.FareConfigPatch
		if !bindJSON(c, &patch) {
			return
		}

		cfg, err := fares.Update(c.Request.Context(), middleware.Principal(c), patch)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Fare config updated", "config": cfg})
	}
}
