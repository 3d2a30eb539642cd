// Package middleware holds gin middleware for identity and request logging.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gocomet/rideshare/internal/api/dto"
	"github.com/gocomet/rideshare/internal/domain/user"
	apperrors "github.com/gocomet/rideshare/pkg/errors"
	"github.com/gocomet/rideshare/pkg/logger"
)

// Identity headers set by the authentication gateway
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

const actorKey = "actor"

// Actor is the authenticated caller
type Actor struct {
	ID   uuid.UUID
	Role user.Role
}

// Identity rejects requests without a valid caller identity
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(strings.TrimSpace(c.GetHeader(HeaderUserID)))
		if err != nil {
			abort(c, apperrors.Unauthorized("Missing or invalid "+HeaderUserID+" header", err))
			return
		}
		role := user.Role(strings.ToUpper(strings.TrimSpace(c.GetHeader(HeaderUserRole))))
		if !role.IsValid() {
			abort(c, apperrors.Unauthorized("Missing or invalid "+HeaderUserRole+" header", nil))
			return
		}
		c.Set(actorKey, Actor{ID: id, Role: role})
		c.Next()
	}
}

// RequireRole lets only the listed roles through. Must run after Identity.
func RequireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			abort(c, apperrors.Unauthorized("Missing caller identity", nil))
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		abort(c, apperrors.Forbiddenf("Role '%s' is not allowed to perform this action", actor.Role))
	}
}

// ActorFrom returns the caller stored by Identity
func ActorFrom(c *gin.Context) (Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return Actor{}, false
	}
	actor, ok := v.(Actor)
	return actor, ok
}

// RequestLogger logs one line per request
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", c.FullPath()),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)),
		}
		if actor, ok := ActorFrom(c); ok {
			fields = append(fields, logger.Stringer("user_id", actor.ID))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("HTTP request failed", fields...)
			return
		}
		log.Info("HTTP request", fields...)
	}
}

func abort(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.Status, dto.ErrorResponse{Code: err.Code, Message: err.Message})
}
