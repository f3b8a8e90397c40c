package handlers

import (
	"crypto/ecdsa"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/crosspostx/backend/internal/middleware"
	"github.com/crosspostx/backend/internal/models"
	"github.com/crosspostx/backend/internal/repositories"
)

// AuthHandler handles Privy authentication and user lookup
type AuthHandler struct {
	userRepository  repositories.UserRepository
	privyAppID      string
	verificationKey *ecdsa.PublicKey
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, privyAppID string, verificationKey *ecdsa.PublicKey) *AuthHandler {
	return &AuthHandler{
		userRepository:  userRepo,
		privyAppID:      privyAppID,
		verificationKey: verificationKey,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/login", h.Login)
	g.GET("/user", h.GetUser)
}

// Login verifies a Privy access token and returns the stored user,
// creating the row on first successful login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	privyUserID, err := middleware.VerifyToken(req.IDToken, h.privyAppID, h.verificationKey)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Privy access token")
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByPrivyID(ctx, privyUserID)
	switch {
	case err == nil:
		// repeat login, refresh the linked email if it changed
		if req.Email != "" && user.Email != req.Email {
			user.Email = req.Email
			if err := h.userRepository.UpdateUser(ctx, user); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first login, create the user
		user = &models.User{PrivyUserID: privyUserID, Email: req.Email}
		if err := h.userRepository.CreateUser(ctx, user); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    user,
	})
}

// GetUser returns the stored user for a Privy user id
func (h *AuthHandler) GetUser(c echo.Context) error {
	privyUserID := c.QueryParam("privyUserId")
	if privyUserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Privy user ID is required")
	}

	user, err := h.userRepository.GetUserByPrivyID(c.Request().Context(), privyUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    user,
	})
}
