package middleware

import (
	"net/http"
	"strings"

	"github.com/anonto42/acebook/backend/internal/session"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const userIDKey = "userID"

// ErrAuth is the only response given to unauthenticated requests.
var ErrAuth = echo.NewHTTPError(http.StatusUnauthorized, "auth error")

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (primitive.ObjectID, error)
}

var _ TokenVerifier = (*session.Codec)(nil)

// JWTAuthMiddleware rejects requests without a valid bearer token and stores
// the token subject under "userID".
func JWTAuthMiddleware(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return ErrAuth
			}
			userID, err := verifier.Verify(tokenString)
			if err != nil {
				return ErrAuth
			}
			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

// OptionalAuth attaches the user id when a valid token is sent and lets
// anonymous requests through otherwise.
func OptionalAuth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if tokenString, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization)); ok {
				if userID, err := verifier.Verify(tokenString); err == nil {
					c.Set(userIDKey, userID)
				}
			}
			return next(c)
		}
	}
}

// UserIDFromContext returns the authenticated requester, if any.
func UserIDFromContext(c echo.Context) (primitive.ObjectID, bool) {
	userID, ok := c.Get(userIDKey).(primitive.ObjectID)
	return userID, ok
}

// Expecting "Bearer <token>"
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
