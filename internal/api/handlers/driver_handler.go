package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gocomet/rideshare/internal/api/dto"
	"github.com/gocomet/rideshare/internal/service/drivers"
)

// ApplyForDriver handles POST /v1/drivers/apply
func (h *Handlers) ApplyForDriver(c *gin.Context) {
	var req dto.ApplyDriverRequest
	if !h.bindJSON(c, &req) {
		return
	}

	a := actor(c)
	d, err := h.Drivers.ApplyForDriver(c.Request.Context(), a.ID, a.Role, drivers.ApplyInput{
		VehicleType:   req.VehicleType,
		VehicleModel:  req.VehicleModel,
		VehicleNumber: req.VehicleNumber,
		LicenseNumber: req.LicenseNumber,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Response{Message: "Driver application submitted", Data: d})
}

// ListApplications handles GET /v1/drivers/applications
func (h *Handlers) ListApplications(c *gin.Context) {
	list, err := h.Drivers.ListApplications(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Response{Message: "Driver applications retrieved successfully", Data: list})
}

// ReviewApplication handles PATCH /v1/drivers/applications/:id/status
func (h *Handlers) ReviewApplication(c *gin.Context) {
	driverID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ReviewApplicationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	d, err := h.Drivers.ReviewApplication(c.Request.Context(), driverID, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Response{Message: "Driver application updated", Data: d})
}

// UpdateAvailability handles PATCH /v1/drivers/availability
func (h *Handlers) UpdateAvailability(c *gin.Context) {
	var req dto.UpdateAvailabilityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	d, err := h.Drivers.UpdateAvailability(c.Request.Context(), actor(c).ID, req.Availability)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Response{Message: "Availability updated", Data: d})
}

// GetMyDriverProfile handles GET /v1/drivers/me
func (h *Handlers) GetMyDriverProfile(c *gin.Context) {
	profile, err := h.Drivers.GetMyProfile(c.Request.Context(), actor(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Response{Message: "Driver profile retrieved successfully", Data: profile})
}

// UpdateMyDriverProfile handles PATCH /v1/drivers/me
func (h *Handlers) UpdateMyDriverProfile(c *gin.Context) {
	var req dto.UpdateDriverProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	d, err := h.Drivers.UpdateOwnProfile(c.Request.Context(), actor(c).ID, drivers.ProfileUpdate{
		VehicleType:   req.VehicleType,
		VehicleModel:  req.VehicleModel,
		VehicleNumber: req.VehicleNumber,
		LicenseNumber: req.LicenseNumber,
		Availability:  req.Availability,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Response{Message: "Driver profile updated", Data: d})
}

// DriverRideHistory handles GET /v1/drivers/me/rides
func (h *Handlers) DriverRideHistory(c *gin.Context) {
	list, err := h.Drivers.DriverRideHistory(c.Request.Context(), actor(c).ID, drivers.RideFilter{
		Status:      c.Query("status"),
		VehicleType: c.Query("vehicle_type"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Response{Message: "Driver ride history retrieved successfully", Data: list})
}
