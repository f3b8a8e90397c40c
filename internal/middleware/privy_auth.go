package middleware

import (
	"crypto/ecdsa"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// ContextKeyPrivyUserID is where the middleware stores the verified
// Privy DID for downstream handlers.
const ContextKeyPrivyUserID = "privyUserID"

const privyIssuer = "privy.io"

// ParseVerificationKey parses the PEM-encoded ES256 public key Privy
// issues per app for access-token verification.
func ParseVerificationKey(pemKey string) (*ecdsa.PublicKey, error) {
	if pemKey == "" {
		return nil, fmt.Errorf("privy verification key not configured")
	}
	return jwt.ParseECPublicKeyFromPEM([]byte(pemKey))
}

// VerifyToken checks a Privy access token and returns the user's DID.
func VerifyToken(tokenString, appID string, key *ecdsa.PublicKey) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	if !claims.VerifyIssuer(privyIssuer, true) {
		return "", fmt.Errorf("unexpected token issuer")
	}
	if !claims.VerifyAudience(appID, true) {
		return "", fmt.Errorf("token issued for a different app")
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token carries no subject")
	}
	return claims.Subject, nil
}

// PrivyAuthMiddleware verifies the Privy access token on each request
// and stashes the caller's DID in the context.
func PrivyAuthMiddleware(appID string, key *ecdsa.PublicKey) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			privyUserID, err := VerifyToken(parts[1], appID, key)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired access token")
			}

			c.Set(ContextKeyPrivyUserID, privyUserID)
			return next(c)
		}
	}
}
