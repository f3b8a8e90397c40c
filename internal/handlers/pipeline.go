package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/crosspostx/backend/internal/pipeline"
)

// PipelineService is the part of the pipeline the HTTP surface needs
type PipelineService interface {
	Run(ctx context.Context) *pipeline.Result
	CheckHealth(ctx context.Context) *pipeline.Health
}

// PipelineHandler exposes the full crosspost pipeline and the system
// health check
type PipelineHandler struct {
	service PipelineService
}

// NewPipelineHandler creates a new PipelineHandler
func NewPipelineHandler(service PipelineService) *PipelineHandler {
	return &PipelineHandler{service: service}
}

// RegisterPipelineRoutes registers pipeline routes
func (h *PipelineHandler) RegisterPipelineRoutes(g *echo.Group) {
	g.POST("/pipeline", h.RunPipeline)
	g.GET("/pipeline", h.GetHealth)
}

// RunPipeline runs monitoring then crossposting and returns the summary
func (h *PipelineHandler) RunPipeline(c echo.Context) error {
	result := h.service.Run(c.Request().Context())

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Crosspost pipeline completed",
		"data":    result,
	})
}

// GetHealth probes the three system dependencies
func (h *PipelineHandler) GetHealth(c echo.Context) error {
	health := h.service.CheckHealth(c.Request().Context())

	message := "All systems operational"
	if !health.Connected() {
		message = "Some systems have issues"
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":   health.Connected(),
		"message":   message,
		"data":      health,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
