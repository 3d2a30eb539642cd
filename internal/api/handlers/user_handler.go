package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gocomet/rideshare/internal/api/dto"
	"github.com/gocomet/rideshare/internal/service/users"
)

// Register handles POST /v1/users
func (h *Handlers) Register(c *gin.Context) {
	var req dto.RegisterUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	u, err := h.Users.Register(c.Request.Context(), users.RegisterInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Response{Message: "User registered successfully", Data: u})
}

// GetMe handles GET /v1/users/me
func (h *Handlers) GetMe(c *gin.Context) {
	u, err := h.Users.GetProfile(c.Request.Context(), actor(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Response{Message: "Profile retrieved successfully", Data: u})
}

// UpdateMe handles PATCH /v1/users/me
func (h *Handlers) UpdateMe(c *gin.Context) {
	var req dto.UpdateUserProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	u, err := h.Users.UpdateProfile(c.Request.Context(), actor(c).ID, users.ProfileUpdate{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Response{Message: "Profile updated successfully", Data: u})
}

// SetActiveState handles PATCH /v1/users/:id/active-state
func (h *Handlers) SetActiveState(c *gin.Context) {
	userID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dto.SetActiveStateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	u, err := h.Users.SetActiveState(c.Request.Context(), actor(c).Role, userID, req.ActiveState)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Response{Message: "Active state updated", Data: u})
}
