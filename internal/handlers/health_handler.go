package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/database"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/dto"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RunningReporter is satisfied by checker.AutoChecker.
type RunningReporter interface {
	Running() bool
}

type HealthHandler struct {
	db          *gorm.DB
	autoChecker RunningReporter
}

func NewHealthHandler(db *gorm.DB, autoChecker RunningReporter) *HealthHandler {
	return &HealthHandler{db: db, autoChecker: autoChecker}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"
	dbStatus := "ok"
	if err := database.Ping(h.db); err != nil {
		status = "degraded"
		dbStatus = "unhealthy: " + err.Error()
	}

	checkerStatus := "stopped"
	if h.autoChecker != nil && h.autoChecker.Running() {
		checkerStatus = "running"
	}

	return c.JSON(dto.HealthResponse{
		Status:      status,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		DB:          dbStatus,
		AutoChecker: checkerStatus,
	})
}
