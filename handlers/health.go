package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports whether the service can reach its database.
func Health(service string, p Pinger, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := p.PingContext(ctx); err != nil {
			log.Error("health check failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "DB connection failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "OK",
			"service":  service,
			"database": "up",
		})
	}
}
