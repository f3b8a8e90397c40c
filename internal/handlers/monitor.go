package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/crosspostx/backend/internal/twitter"
)

// MonitorService runs one monitoring pass in isolation
type MonitorService interface {
	Run(ctx context.Context) *twitter.MonitoringResult
}

// MonitorHandler exposes the Twitter monitoring stage on its own
type MonitorHandler struct {
	monitoring     MonitorService
	testConnection func(ctx context.Context) error
}

// NewMonitorHandler creates a new MonitorHandler
func NewMonitorHandler(monitoring MonitorService, testConnection func(ctx context.Context) error) *MonitorHandler {
	return &MonitorHandler{monitoring: monitoring, testConnection: testConnection}
}

// RegisterMonitorRoutes registers monitoring routes
func (h *MonitorHandler) RegisterMonitorRoutes(g *echo.Group) {
	g.POST("/twitter/monitor", h.RunMonitoring)
	g.GET("/twitter/monitor", h.TestConnection)
}

// RunMonitoring checks all active accounts for new tweets
func (h *MonitorHandler) RunMonitoring(c echo.Context) error {
	result := h.monitoring.Run(c.Request().Context())

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Twitter monitoring completed",
		"data":    result,
	})
}

// TestConnection verifies the source platform is reachable
func (h *MonitorHandler) TestConnection(c echo.Context) error {
	if err := h.testConnection(c.Request().Context()); err != nil {
		return c.JSON(http.StatusOK, echo.Map{
			"success":   false,
			"message":   "Twitter connection failed: " + err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"message":   "Twitter connection successful",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
