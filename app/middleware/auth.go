package middleware

import (
	"net/http"
	"strings"

	"github.com/hireiq/hireiq/app/service"
	"github.com/hireiq/hireiq/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const identityContextKey = "identity"

type tokenVerifier interface {
	Verify(tokenString string, kind service.TokenKind) (*service.Claims, error)
}

type AuthMiddleware struct {
	tokens tokenVerifier
}

func NewAuthMiddleware(tokens tokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth verifies the bearer material for the given token kind and
// stores the resolved identity in the request context. Material is taken
// from the Authorization header first, then from the same-named cookie.
func (m *AuthMiddleware) RequireAuth(kind service.TokenKind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := ExtractToken(c, kind)
			if tokenString == "" {
				logrus.Debug("Missing bearer token")
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "missing authentication token",
				})
			}

			claims, err := m.tokens.Verify(tokenString, kind)
			if err != nil {
				logrus.WithError(err).Debug("Token verification failed")
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "invalid or expired token",
				})
			}

			c.Set(identityContextKey, types.Identity{
				UserID: claims.UserID(),
				Email:  claims.Email,
				Role:   claims.Role,
				Name:   claims.Name,
			})

			return next(c)
		}
	}
}

// RequireRole is the access policy gate: RequireAuth answers who the caller
// is, this answers whether they may proceed.
func (m *AuthMiddleware) RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := CurrentIdentity(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "unauthorized",
				})
			}

			if identity.Role != role {
				logrus.WithFields(logrus.Fields{
					"user_id":  identity.UserID,
					"role":     identity.Role,
					"required": role,
				}).Warn("Access denied: insufficient role")
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "access denied",
				})
			}

			return next(c)
		}
	}
}

// CurrentIdentity returns the identity resolved by RequireAuth.
func CurrentIdentity(c echo.Context) (types.Identity, bool) {
	identity, ok := c.Get(identityContextKey).(types.Identity)
	return identity, ok
}

// ExtractToken pulls bearer material for the given kind: Authorization
// header first, else the kind's cookie.
func ExtractToken(c echo.Context, kind service.TokenKind) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}

	name := types.CookieAccessToken
	if kind == service.TokenRefresh {
		name = types.CookieRefreshToken
	}
	if cookie, err := c.Cookie(name); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}
