package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// FarcasterHandler guards the crosspost endpoints. Publishing needs a
// user's signer capability, which only exists inside an authenticated
// client session; the server cannot act on the user's behalf here.
type FarcasterHandler struct{}

// NewFarcasterHandler creates a new FarcasterHandler
func NewFarcasterHandler() *FarcasterHandler {
	return &FarcasterHandler{}
}

// RegisterFarcasterRoutes registers Farcaster crosspost routes
func (h *FarcasterHandler) RegisterFarcasterRoutes(g *echo.Group) {
	g.POST("/farcaster/crosspost", h.Crosspost)
	g.GET("/farcaster/crosspost", h.TestConnection)
}

// Crosspost refuses server-side publishing without a signer
func (h *FarcasterHandler) Crosspost(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"success": false,
		"error":   "Farcaster crossposting must be done from the client-side with an authenticated signer",
	})
}

// TestConnection refuses server-side signer testing
func (h *FarcasterHandler) TestConnection(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"success": false,
		"error":   "Farcaster connection testing must be done from the client-side with an authenticated signer",
	})
}
