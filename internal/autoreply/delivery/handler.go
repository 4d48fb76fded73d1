package delivery

import (
	"context"
	"log"
	"net/http"
	"time"

	"autoreply-backend/internal/autoreply/usecase"
	"autoreply-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

// runTimeout bounds one pass so a hung provider call cannot hang the
// deployment past the lease TTL.
const runTimeout = 5 * time.Minute

// CronHandler exposes the job trigger endpoint, intended to be invoked by
// an external scheduler.
type CronHandler struct {
	runner usecase.JobRunner
	cfg    *config.Config
}

func NewCronHandler(runner usecase.JobRunner, cfg *config.Config) *CronHandler {
	return &CronHandler{
		runner: runner,
		cfg:    cfg,
	}
}

// Process runs one pass and returns the aggregate per-rule/per-message
// report. A top-level configuration or fetch failure is the only non-200
// outcome; individual rule and message failures are enumerated in the body.
func (h *CronHandler) Process(c *gin.Context) {
	if err := h.cfg.Validate(); err != nil {
		log.Printf("[Cron] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if h.cfg.CronSecret != "" && c.GetHeader("X-Cron-Secret") != h.cfg.CronSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid cron secret"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), runTimeout)
	defer cancel()

	report, err := h.runner.Run(ctx)
	if err != nil {
		log.Printf("[Cron] Job failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}
