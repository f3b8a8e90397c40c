package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/crosspostx/backend/internal/middleware"
	"github.com/crosspostx/backend/internal/repositories"
)

const defaultHistoryLimit = 50

// CrosspostLogHandler serves a user's crosspost history
type CrosspostLogHandler struct {
	logRepository  repositories.CrosspostLogRepository
	userRepository repositories.UserRepository
}

// NewCrosspostLogHandler creates a new CrosspostLogHandler
func NewCrosspostLogHandler(logRepo repositories.CrosspostLogRepository, userRepo repositories.UserRepository) *CrosspostLogHandler {
	return &CrosspostLogHandler{logRepository: logRepo, userRepository: userRepo}
}

// RegisterCrosspostRoutes registers crosspost history routes
func (h *CrosspostLogHandler) RegisterCrosspostRoutes(g *echo.Group) {
	g.GET("/crossposts", h.ListCrossposts)
}

// ListCrossposts returns the authenticated user's crosspost history,
// newest first
func (h *CrosspostLogHandler) ListCrossposts(c echo.Context) error {
	privyUserID, _ := c.Get(middleware.ContextKeyPrivyUserID).(string)
	if privyUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing identity")
	}

	user, err := h.userRepository.GetUserByPrivyID(c.Request().Context(), privyUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit")
		}
		limit = parsed
	}

	logs, err := h.logRepository.ListLogsByUser(c.Request().Context(), user.ID, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, logs)
}
