package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/gocomet/rideshare/internal/api/handlers"
	"github.com/gocomet/rideshare/internal/api/middleware"
	"github.com/gocomet/rideshare/internal/domain/user"
	"github.com/gocomet/rideshare/pkg/logger"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, nrApp *newrelic.Application, log *logger.Logger) {
	// Add New Relic middleware if enabled
	if nrApp != nil {
		r.Use(nrgin.Middleware(nrApp))
	}
	r.Use(middleware.RequestLogger(log))

	r.GET("/health", h.Health)

	admins := middleware.RequireRole(user.RoleAdmin, user.RoleSuperAdmin)
	riders := middleware.RequireRole(user.RoleRider)
	drivers := middleware.RequireRole(user.RoleDriver)
	dispatch := middleware.RequireRole(user.RoleDriver, user.RoleAdmin, user.RoleSuperAdmin)

	v1 := r.Group("/v1")
	{
		v1.POST("/users", h.Register)

		authed := v1.Group("", middleware.Identity())

		usersGroup := authed.Group("/users")
		{
			usersGroup.GET("/me", h.GetMe)
			usersGroup.PATCH("/me", h.UpdateMe)
			usersGroup.PATCH("/:id/active-state", admins, h.SetActiveState)
		}

		rides := authed.Group("/rides")
		{
			rides.POST("", riders, h.RequestRide)
			rides.GET("", dispatch, h.ListRides)
			rides.GET("/history", riders, h.RideHistory)
			rides.GET("/history/:id", riders, h.GetRide)
			rides.PATCH("/:id/cancel", riders, h.CancelRide)
			rides.PATCH("/:id/status", drivers, h.UpdateRideStatus)
			rides.GET("/earnings", drivers, h.EarningHistory)
		}

		driversGroup := authed.Group("/drivers")
		{
			driversGroup.POST("/apply", riders, h.ApplyForDriver)
			driversGroup.GET("/applications", admins, h.ListApplications)
			driversGroup.PATCH("/applications/:id/status", admins, h.ReviewApplication)
			driversGroup.PATCH("/availability", drivers, h.UpdateAvailability)
			driversGroup.GET("/me", drivers, h.GetMyDriverProfile)
			driversGroup.PATCH("/me", drivers, h.UpdateMyDriverProfile)
			driversGroup.GET("/me/rides", drivers, h.DriverRideHistory)
		}
	}
}
