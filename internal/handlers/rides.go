package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridehail-backend/internal/apperrors"
	"github.com/chachabrian/ridehail-backend/internal/middleware"
	"github.com/chachabrian/ridehail-backend/internal/models"
	"github.com/chachabrian/ridehail-backend/internal/services"
)

type locationInput struct {
	Address string   `json:"address" binding:"required"`
	Lat     *float64 `json:"lat" binding:"required"`
	Lng     *float64 `json:"lng" binding:"required"`
}

func (l locationInput) toModel() models.Location {
	return models.Location{Address: l.Address, Lat: *l.Lat, Lng: *l.Lng}
}

// CreateRideInput is the rider's booking form. A client-side fare
// estimate may be sent but the stored fare is always priced here.
type CreateRideInput struct {
	PickupLocation locationInput `json:"pickupLocation" binding:"required"`
	DropLocation   locationInput `json:"dropLocation" binding:"required"`
	Fare           float64       `json:"fare"`
}

type UpdateStatusInput struct {
	Status models.RideStatus `json:"status" binding:"required"`
}

type RateRideInput struct {
	Rating int `json:"rating" binding:"required"`
}

// CreateRide books a ride for the calling rider
func CreateRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateRideInput
		if !bindJSON(c, &input) {
			return
		}

		ride, err := rides.RequestRide(c.Request.Context(), middleware.Principal(c), services.BookRideInput{
			PickupLocation: input.PickupLocation.toModel(),
			DropLocation:   input.DropLocation.toModel(),
		})
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, ride)
	}
}

func GetMyRides(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := rides.MyRides(c.Request.Context(), middleware.Principal(c))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GetPendingRides lists rides assigned to the driver awaiting acceptance
func GetPendingRides(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := rides.PendingForDriver(c.Request.Context(), middleware.Principal(c))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ride, err := rides.Get(c.Request.Context(), middleware.Principal(c), id)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, ride)
	}
}

func AcceptRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ride, err := rides.Accept(c.Request.Context(), middleware.Principal(c), id)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, ride)
	}
}

func UpdateRideStatus(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input UpdateStatusInput
		if !bindJSON(c, &input) {
			return
		}

		ride, err := rides.UpdateStatus(c.Request.Context(), middleware.Principal(c), id, input.Status)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, ride)
	}
}

// CollectPayment marks the cash for a completed ride as received
func CollectPayment(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ride, err := rides.CollectCash(c.Request.Context(), middleware.Principal(c), id)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, ride)
	}
}

func RateRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input RateRideInput
		if !bindJSON(c, &input) {
			return
		}

		ride, err := rides.Rate(c.Request.Context(), middleware.Principal(c), id, input.Rating)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, ride)
	}
}

// GetStats returns rider spend or driver earnings depending on the caller
func GetStats(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.Principal(c)

		var (
			stats any
			err   error
		)
		switch p.Role {
		case models.RoleRider:
			stats, err = rides.RiderStats(c.Request.Context(), p)
		case models.RoleDriver:
			stats, err = rides.DriverStats(c.Request.Context(), p)
		default:
			err = apperrors.InvalidInput("Stats not available for this role")
		}
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
