package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/crosspostx/backend/internal/middleware"
	"github.com/crosspostx/backend/internal/models"
	"github.com/crosspostx/backend/internal/repositories"
)

// AccountHandler handles HTTP requests for monitored Twitter accounts
type AccountHandler struct {
	accountRepository repositories.AccountRepository
	userRepository    repositories.UserRepository
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountRepo repositories.AccountRepository, userRepo repositories.UserRepository) *AccountHandler {
	return &AccountHandler{accountRepository: accountRepo, userRepository: userRepo}
}

// RegisterAccountRoutes registers monitored-account routes
func (h *AccountHandler) RegisterAccountRoutes(g *echo.Group) {
	g.POST("/accounts", h.CreateAccount)
	g.GET("/accounts", h.ListAccounts)
	g.PATCH("/accounts/:id", h.UpdateAccount)
	g.DELETE("/accounts/:id", h.DeleteAccount)
}

// currentUser resolves the authenticated user from the Privy DID set
// by the auth middleware
func (h *AccountHandler) currentUser(c echo.Context) (*models.User, error) {
	privyUserID, _ := c.Get(middleware.ContextKeyPrivyUserID).(string)
	if privyUserID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Missing identity")
	}

	user, err := h.userRepository.GetUserByPrivyID(c.Request().Context(), privyUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return user, nil
}

// CreateAccount registers a Twitter username for monitoring
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req models.CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	username := strings.TrimPrefix(strings.TrimSpace(req.TwitterUsername), "@")
	if username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Twitter username is required")
	}

	account := &models.MonitoredAccount{
		UserID:          user.ID,
		TwitterUsername: username,
		IsActive:        true,
	}
	if err := h.accountRepository.CreateAccount(c.Request().Context(), account); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, account)
}

// ListAccounts returns the authenticated user's monitored accounts
func (h *AccountHandler) ListAccounts(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	accounts, err := h.accountRepository.ListAccountsByUser(c.Request().Context(), user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, accounts)
}

// ownedAccount loads an account and checks it belongs to the user
func (h *AccountHandler) ownedAccount(c echo.Context, user *models.User) (*models.MonitoredAccount, error) {
	account, err := h.accountRepository.GetAccountByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Monitored account not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if account.UserID != user.ID {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Monitored account not found")
	}
	return account, nil
}

// UpdateAccount toggles monitoring for one of the user's accounts
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req models.UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	account, err := h.ownedAccount(c, user)
	if err != nil {
		return err
	}

	if err := h.accountRepository.SetAccountActive(c.Request().Context(), account.ID, *req.IsActive); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	account.IsActive = *req.IsActive

	return c.JSON(http.StatusOK, account)
}

// DeleteAccount removes one of the user's monitored accounts
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	account, err := h.ownedAccount(c, user)
	if err != nil {
		return err
	}

	if err := h.accountRepository.DeleteAccount(c.Request().Context(), account.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
