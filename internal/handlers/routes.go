package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chachabrian/ridehail-backend/internal/middleware"
	"github.com/chachabrian/ridehail-backend/internal/models"
	"github.com/chachabrian/ridehail-backend/internal/services"
)

// Deps are the services the routes call into.
type Deps struct {
	Resolver middleware.PrincipalResolver
	Auth     *services.AuthService
	Rides    *services.RideService
	Fares    *services.FareService
	Admin    *services.AdminService
	Profiles *services.ProfileService
	Pusher   *services.Pusher
	Hub      *services.Hub
}

// RegisterRoutes mounts the whole API on r.
func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/healthz", Healthz())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", Register(d.Auth))
		auth.POST("/login", Login(d.Auth))
		auth.POST("/driver/login", DriverLogin(d.Auth))
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(d.Resolver))
	{
		protected.GET("/ws", WebSocketHandler(d.Hub))
		protected.GET("/profile", GetProfile(d.Profiles))
		protected.PUT("/profile", UpdateProfile(d.Profiles))
		protected.GET("/locations", SearchLocations(d.Admin))
		protected.POST("/notifications/register-token", RegisterFCMToken(d.Pusher))

		rider := middleware.RequireRoles(models.RoleRider)
		driver := middleware.RequireRoles(models.RoleDriver)
		riderOrDriver := middleware.RequireRoles(models.RoleRider, models.RoleDriver)
		driverOrAdmin := middleware.RequireRoles(models.RoleDriver, models.RoleAdmin)

		rides := protected.Group("/rides")
		{
			rides.POST("", rider, CreateRide(d.Rides))
			rides.GET("/fare-config", GetFareConfig(d.Fares))
			rides.GET("/estimate", EstimateFare(d.Fares))
			rides.GET("/pending", driver, GetPendingRides(d.Rides))
			rides.GET("/my-rides", riderOrDriver, GetMyRides(d.Rides))
			rides.GET("/stats", GetStats(d.Rides))
			rides.GET("/:id", GetRide(d.Rides))
			rides.PUT("/:id/accept", driver, AcceptRide(d.Rides))
			rides.PUT("/:id/status", driverOrAdmin, UpdateRideStatus(d.Rides))
			rides.PUT("/:id/collect-payment", driver, CollectPayment(d.Rides))
			rides.POST("/:id/rate", riderOrDriver, RateRide(d.Rides))
		}

		protected.PUT("/driver/availability", driver, UpdateDriverAvailability(d.Profiles))

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRoles(models.RoleAdmin))
		{
			admin.GET("/users", ListUsers(d.Admin))
			admin.GET("/drivers", ListDrivers(d.Admin))
			admin.POST("/drivers", CreateDriver(d.Admin))
			admin.DELETE("/drivers/:id", DeleteDriver(d.Admin))
			admin.PUT("/drivers/:id/approve", ApproveDriver(d.Admin))
			admin.PUT("/drivers/:id/suspend", SuspendDriver(d.Admin))

			admin.GET("/rides", ListAllRides(d.Rides))
			admin.POST("/rides", AdminCreateRide(d.Rides))
			admin.PUT("/rides/:id/assign", AssignDriver(d.Rides))
			admin.PUT("/rides/:id/payment", SetPaymentStatus(d.Rides))

			admin.GET("/locations", AdminListLocations(d.Admin))
			admin.POST("/locations", AddLocation(d.Admin))
			admin.DELETE("/locations/:name", DeleteLocation(d.Admin))

			admin.GET("/fare-config", GetFareConfig(d.Fares))
			admin.PUT("/fare-config", UpdateFareConfig(d.Fares))
		}
	}
}
