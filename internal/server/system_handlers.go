package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qwerty-development/gym-webapp-sub000/internal/api"
	"github.com/qwerty-development/gym-webapp-sub000/internal/logger"
)

// Queue is the notification outbox as seen by the health check.
type Queue interface {
	Ping(ctx context.Context) error
	QueueLength(ctx context.Context) int64
}

// @Summary      Health check
// @Description  Reports database and notification queue reachability
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Failure      503 {object} api.HealthResponse
// @Router       /health [get]
func Health(database *sqlx.DB, queue Queue) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		resp := api.HealthResponse{Status: "ok", Database: "ok", Queue: "ok"}
		code := http.StatusOK

		if err := database.PingContext(ctx); err != nil {
			logger.Warn("health: database unreachable", "error", err)
			resp.Status, resp.Database = "degraded", "unreachable"
			code = http.StatusServiceUnavailable
		}
		// Queue trouble is reported but does not fail the check.
		if err := queue.Ping(ctx); err != nil {
			logger.Warn("health: notification queue unreachable", "error", err)
			resp.Queue = "unreachable"
		} else {
			resp.Pending = queue.QueueLength(ctx)
		}

		c.JSON(code, resp)
	}
}

// @Summary      Prometheus metrics
// @Description  Exposes Prometheus metrics in text format
// @Tags         system
// @Produce      text/plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
