package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridehail-backend/internal/apperrors"
	"github.com/chachabrian/ridehail-backend/internal/middleware"
	"github.com/chachabrian/ridehail-backend/internal/models"
	"github.com/chachabrian/ridehail-backend/internal/services"
)

type CreateDriverInput struct {
	Name     string         `json:"name" binding:"required"`
	Email    string         `json:"email" binding:"required,email"`
	Password string         `json:"password" binding:"required,min=6"`
	Phone    string         `json:"phone" binding:"required"`
	Vehicle  models.Vehicle `json:"vehicle"`
}

type AssignDriverInput struct {
	DriverID uint `json:"driverId" binding:"required"`
}

type PaymentStatusInput struct {
	PaymentStatus models.PaymentStatus `json:"paymentStatus" binding:"required"`
}

type AdminCreateRideInput struct {
	UserID         uint          `json:"userId" binding:"required"`
	PickupLocation locationInput `json:"pickupLocation" binding:"required"`
	DropLocation   locationInput `json:"dropLocation" binding:"required"`
	Fare           float64       `json:"fare"`
	DriverID       *uint         `json:"driverId"`
}

type AddLocationInput struct {
	Name string   `json:"name" binding:"required"`
	Lat  *float64 `json:"lat" binding:"required"`
	Lng  *float64 `json:"lng" binding:"required"`
}

func ListUsers(admin *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := admin.ListUsers(c.Request.Context(), middleware.Principal(c))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func ListDrivers(admin *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		drivers, err := admin.ListDrivers(c.Request.Context(), middleware.Principal(c))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, drivers)
	}
}

func ListAllRides(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := rides.AllRides(c.Request.Context(), middleware.Principal(c))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func CreateDriver(admin *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateDriverInput
		if !bindJSON(c, &input) {
			return
		}

		driver, err := admin.CreateDriver(c.Request.Context(), middleware.Principal(c), services.CreateDriverInput(input))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, driver)
	}
}

func ApproveDriver(admin *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		driver, err := admin.ApproveDriver(c.Request.Context(), middleware.Principal(c), id)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Driver approved", "driver": driver})
	}
}

func SuspendDriver(admin *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		driver, err := admin.SuspendDriver(c.Request.Context(), middleware.Principal(c), id)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Driver suspended", "driver": driver})
	}
}

func DeleteDriver(admin *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := admin.DeleteDriver(c.Request.Context(), middleware.Principal(c), id); err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Driver removed"})
	}
}

func AssignDriver(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input AssignDriverInput
		if !bindJSON(c, &input) {
			return
		}

		ride, err := rides.Assign(c.Request.Context(), middleware.Principal(c), id, input.DriverID)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, ride)
	}
}

func SetPaymentStatus(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input PaymentStatusInput
		if !bindJSON(c, &input) {
			return
		}

		ride, err := rides.SetPaymentStatus(c.Request.Context(), middleware.Principal(c), id, input.PaymentStatus)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, ride)
	}
}

// AdminCreateRide books on a rider's behalf, optionally assigning a driver
func AdminCreateRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input AdminCreateRideInput
		if !bindJSON(c, &input) {
			return
		}

		ride, err := rides.CreateForRider(c.Request.Context(), middleware.Principal(c), services.AdminRideInput{
			RiderID:        input.UserID,
			PickupLocation: input.PickupLocation.toModel(),
			DropLocation:   input.DropLocation.toModel(),
			Fare:           input.Fare,
			DriverID:       input.DriverID,
		})
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, ride)
	}
}

// AdminListLocations returns the list in the {"areas": [...]} shape the
// admin console reads.
func AdminListLocations(admin *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		areas, err := admin.ListLocations(c.Request.Context(), middleware.Principal(c))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"areas": areas})
	}
}

func AddLocation(admin *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input AddLocationInput
		if !bindJSON(c, &input) {
			return
		}

		loc, err := admin.AddLocation(c.Request.Context(), middleware.Principal(c), models.NamedLocation{
			Name: input.Name,
			Lat:  *input.Lat,
			Lng:  *input.Lng,
		})
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Location added successfully", "location": loc})
	}
}

func DeleteLocation(admin *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, err := url.PathUnescape(c.Param("name"))
		if err != nil || name == "" {
			middleware.AbortWithError(c, apperrors.InvalidInput("invalid location name"))
			return
		}
		if err := admin.RemoveLocation(c.Request.Context(), middleware.Principal(c), name); err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Location deleted successfully"})
	}
}

// SearchLocations is the booking autocomplete for any signed-in caller
func SearchLocations(admin *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		locs, err := admin.SearchLocations(c.Request.Context(), middleware.Principal(c), c.Query("q"))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, locs)
	}
}
