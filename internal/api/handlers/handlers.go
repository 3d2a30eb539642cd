package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gocomet/rideshare/internal/api/dto"
	"github.com/gocomet/rideshare/internal/api/middleware"
	"github.com/gocomet/rideshare/internal/service/drivers"
	"github.com/gocomet/rideshare/internal/service/rides"
	"github.com/gocomet/rideshare/internal/service/users"
	apperrors "github.com/gocomet/rideshare/pkg/errors"
	"github.com/gocomet/rideshare/pkg/logger"
)

// HealthCheck reports whether one dependency is reachable
type HealthCheck func(ctx context.Context) error

// Handlers holds all handler dependencies
type Handlers struct {
	Rides   *rides.Service
	Drivers *drivers.Service
	Users   *users.Service
	Logger  *logger.Logger
	Checks  map[string]HealthCheck
}

// NewHandlers creates a new Handlers instance
func NewHandlers(rideSvc *rides.Service, driverSvc *drivers.Service, userSvc *users.Service, log *logger.Logger, checks map[string]HealthCheck) *Handlers {
	return &Handlers{
		Rides:   rideSvc,
		Drivers: driverSvc,
		Users:   userSvc,
		Logger:  log,
		Checks:  checks,
	}
}

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{Status: "healthy", Checks: map[string]string{}}
	status := http.StatusOK
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	c.JSON(status, resp)
}

// respondError renders err as an ErrorResponse with its HTTP status
func (h *Handlers) respondError(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.Logger.Error("Request failed",
			logger.String("path", c.FullPath()),
			logger.String("code", appErr.Code),
			logger.Err(err),
		)
	}
	c.JSON(appErr.Status, dto.ErrorResponse{Code: appErr.Code, Message: appErr.Message})
}

// bindJSON binds the body or responds with INVALID_INPUT
func (h *Handlers) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    apperrors.CodeInvalidInput,
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return false
	}
	return true
}

// pathID parses a uuid path parameter or responds with INVALID_INPUT
func (h *Handlers) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.respondError(c, apperrors.InvalidInputf("Invalid %s '%s'", name, c.Param(name)))
		return uuid.Nil, false
	}
	return id, true
}

func actor(c *gin.Context) middleware.Actor {
	a, _ := middleware.ActorFrom(c)
	return a
}
