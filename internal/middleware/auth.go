package middleware

import (
	"context"
	"strings"

	"workspace-service/internal/apperror"
	"workspace-service/internal/service"
	"workspace-service/pkg/logger"
	"workspace-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SessionCookie is the cookie carrying the token for browser clients
const SessionCookie = "session"

const (
	userIDKey    = "user_id"
	sessionIDKey = "session_id"
)

// Authenticator resolves a token to the caller's identity
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*service.Identity, error)
}

// AuthMiddleware requires a live session. The token is read from the Authorization
// header, falling back to the session cookie.
func AuthMiddleware(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			token, err := extractToken(c)
			if err != nil {
				log.Warn("Rejected request without usable token", zap.Error(err))
				return err
			}

			identity, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				log.Warn("Authentication failed", zap.Error(err))
				return err
			}

			c.Set(userIDKey, identity.UserID)
			c.Set(sessionIDKey, identity.SessionID)
			userLog := log.With(zap.String("user_id", identity.UserID))
			c.Set(logger.Key, userLog)
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithContext(req.Context(), userLog)))
			return next(c)
		}
	}
}

func extractToken(c echo.Context) (string, error) {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			prometheus.RecordAuthError("invalid_auth_format")
			return "", apperror.Unauthorized("invalid authorization format, expected Bearer token")
		}
		return parts[1], nil
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	prometheus.RecordAuthError("missing_token")
	return "", apperror.Unauthorized("missing authorization token")
}

// UserID returns the authenticated user id set by AuthMiddleware
func UserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}

// SessionID returns the authenticated session id set by AuthMiddleware
func SessionID(c echo.Context) string {
	id, _ := c.Get(sessionIDKey).(string)
	return id
}
