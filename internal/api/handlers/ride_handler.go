package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gocomet/rideshare/internal/api/dto"
	"github.com/gocomet/rideshare/internal/domain/ride"
	"github.com/gocomet/rideshare/internal/service/rides"
	apperrors "github.com/gocomet/rideshare/pkg/errors"
)

// RequestRide handles POST /v1/rides
func (h *Handlers) RequestRide(c *gin.Context) {
	var req dto.RequestRideRequest
	if !h.bindJSON(c, &req) {
		return
	}

	rd, err := h.Rides.RequestRide(c.Request.Context(), rides.RequestRideInput{
		RiderID:     actor(c).ID,
		Pickup:      toLocation(req.PickupLocation),
		Destination: toLocation(req.DestinationLocation),
		VehicleType: req.VehicleType,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Response{Message: "Ride requested successfully", Data: rd})
}

func toLocation(l dto.LocationRequest) ride.Location {
	var lat, lng float64
	if len(l.Coordinates) == 2 {
		lat, lng = l.Coordinates[0], l.Coordinates[1]
	}
	return ride.NewLocation(lat, lng, l.Name)
}

// ListRides handles GET /v1/rides
func (h *Handlers) ListRides(c *gin.Context) {
	filter, err := ride.ParseFilter(c.Query("status"), c.Query("vehicle_type"))
	if err != nil {
		h.respondError(c, apperrors.InvalidInput(err.Error(), err))
		return
	}

	list, err := h.Rides.ListRides(c.Request.Context(), actor(c).ID, filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Response{Message: "Rides retrieved successfully", Data: list})
}

// RideHistory handles GET /v1/rides/history
func (h *Handlers) RideHistory(c *gin.Context) {
	list, err := h.Rides.RideHistory(c.Request.Context(), actor(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if list == nil {
		list = []*ride.Ride{}
	}
	c.JSON(http.StatusOK, dto.Response{Message: "Ride history retrieved successfully", Data: list})
}

// GetRide handles GET /v1/rides/history/:id
func (h *Handlers) GetRide(c *gin.Context) {
	rideID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	rd, err := h.Rides.GetRideByID(c.Request.Context(), actor(c).ID, rideID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Response{Message: "Ride retrieved successfully", Data: rd})
}

// UpdateRideStatus handles PATCH /v1/rides/:id/status
func (h *Handlers) UpdateRideStatus(c *gin.Context) {
	rideID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateRideStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	target := ride.Status(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !target.IsValid() {
		h.respondError(c, apperrors.InvalidInputf("Invalid ride status '%s'", req.Status))
		return
	}

	rd, err := h.Rides.UpdateRideStatus(c.Request.Context(), actor(c).ID, rideID, target)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Response{Message: "Ride status updated successfully", Data: rd})
}

// CancelRide handles PATCH /v1/rides/:id/cancel
func (h *Handlers) CancelRide(c *gin.Context) {
	rideID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelRideRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	rd, err := h.Rides.CancelRide(c.Request.Context(), actor(c).ID, rideID, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Response{Message: "Ride cancelled successfully", Data: rd})
}

// EarningHistory handles GET /v1/rides/earnings
func (h *Handlers) EarningHistory(c *gin.Context) {
	history, err := h.Rides.ViewEarningHistory(c.Request.Context(), actor(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Response{Message: "Earning history retrieved successfully", Data: history})
}
