package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/models"
	"storefront/utils"
)

const (
	SessionCookie = "visitor"
	visitorIDKey  = "visitor_id"
)

type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Secure bool
	Logger *zap.Logger
}

// SessionMiddleware reads the signed visitor cookie and issues a new one when
// it is missing or invalid. Every request ends up with a visitor id.
func SessionMiddleware(cfg SessionConfig) gin.HandlerFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if raw, err := c.Cookie(SessionCookie); err == nil && raw != "" {
			claims, err := utils.ValidateVisitorToken(raw, cfg.Secret)
			if err == nil {
				c.Set(visitorIDKey, claims.VisitorID)
				c.Next()
				return
			}
			logger.Debug("visitor cookie rejected", zap.Error(err))
		}

		visitorID := uuid.NewString()
		token, err := utils.GenerateVisitorToken(visitorID, cfg.Secret, cfg.TTL)
		if err != nil {
			logger.Error("issue visitor cookie", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
				Success: false,
				Message: "Failed to start session",
				Error:   err.Error(),
			})
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, token, int(cfg.TTL.Seconds()), "/", "", cfg.Secure, true)
		c.Set(visitorIDKey, visitorID)
		c.Next()
	}
}

func VisitorID(c *gin.Context) string {
	return c.GetString(visitorIDKey)
}
