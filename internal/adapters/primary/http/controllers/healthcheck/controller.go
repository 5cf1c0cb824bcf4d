package healthcheckController

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readyTimeout = 2 * time.Second

// ReadinessProbe dependency that can report whether it is usable
type ReadinessProbe interface {
	Ready(ctx context.Context) error
}

type HealthCheckController struct {
	probes map[string]ReadinessProbe
	log    *slog.Logger
}

func New(probes map[string]ReadinessProbe, log *slog.Logger) *HealthCheckController {
	return &HealthCheckController{
		probes: probes,
		log:    log,
	}
}

func (c *HealthCheckController) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", c.health)
	r.GET("/ready", c.ready)
}

// health liveness, always 200
func (c *HealthCheckController) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "payments-ms",
	})
}

// ready checks every registered dependency
func (c *HealthCheckController) ready(ctx *gin.Context) {
	probeCtx, cancel := context.WithTimeout(ctx.Request.Context(), readyTimeout)
	defer cancel()

	failed := gin.H{}
	for name, probe := range c.probes {
		if err := probe.Ready(probeCtx); err != nil {
			c.log.Error("dependency not ready", "dependency", name, "error", err)
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"errors": failed,
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
