package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/amazocart-backend/internal/middleware"
	"gorm.io/gorm"
)

type HealthController struct {
	db        *gorm.DB
	startedAt time.Time
}

func NewHealthController(gdb *gorm.DB) *HealthController {
	return &HealthController{
		db:        gdb,
		startedAt: time.Now(),
	}
}

// Check probes store connectivity and reports round-trip latency
// GET /api/health
func (ctrl *HealthController) Check(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	start := time.Now()
	var one int
	if err := ctrl.db.Raw("SELECT 1").Scan(&one).Error; err != nil {
		log.Error("Health check failed", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "DOWN",
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "OK",
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"queryTimeMs":   time.Since(start).Milliseconds(),
		"uptimeSeconds": int64(time.Since(ctrl.startedAt).Seconds()),
	})
}
