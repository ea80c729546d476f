package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"biliticket/sessionstore/internal/repository"
	"biliticket/sessionstore/pkg/response"
)

const healthTimeout = 2 * time.Second

// Healthz reports ok when the state backend answers, or when it cannot be pinged.
func Healthz(store repository.StateStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p, ok := store.(repository.Pinger); ok {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				response.ServiceUnavailable(c, "state store unreachable")
				return
			}
		}
		c.JSON(200, gin.H{"status": "ok"})
	}
}
