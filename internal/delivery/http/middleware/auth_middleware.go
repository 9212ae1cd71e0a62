package middleware

import (
	"strings"

	"marketplace/internal/delivery/http/response"
	"marketplace/internal/domain/entity"
	"marketplace/internal/domain/service"
	"marketplace/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context keys set by Authenticate for downstream handlers.
const (
	ContextKeyUserID = "userID"
	ContextKeyRole   = "role"
)

// AuthMiddleware provides middleware for access token authentication and
// permission-based authorization.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	access   usecase.AccessUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService, access usecase.AccessUsecase) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, access: access}
}

// Authenticate validates the bearer access token and stores the caller's
// identity on the request context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "MISSING_TOKEN", "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return response.Unauthorized(c, "INVALID_TOKEN_FORMAT", "Invalid token format, must be Bearer token")
		}

		claims, err := m.tokenSvc.ValidateAccessToken(tokenString)
		if err != nil {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid or expired token")
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRole, claims.Role)

		return next(c)
	}
}

// RequirePermissions is a middleware factory that grants access only when the
// caller's role covers every listed permission. It must be used AFTER the
// Authenticate middleware. Any failure while resolving permissions denies
// access rather than letting the request through.
func (m *AuthMiddleware) RequirePermissions(required ...entity.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := GetUserID(c)
			if !ok {
				return response.Unauthorized(c, "MISSING_IDENTITY", "Authentication required")
			}

			if len(required) == 0 {
				return next(c)
			}

			granted, err := m.access.PermissionsFor(c.Request().Context(), userID)
			if err != nil {
				return response.Forbidden(c, "PERMISSION_DENIED", "Access denied")
			}

			if !granted.AllowsAll(required) {
				return response.Forbidden(c, "PERMISSION_DENIED", "Access denied")
			}

			return next(c)
		}
	}
}

// GetUserID extracts the authenticated user's ID set by Authenticate.
func GetUserID(c echo.Context) (uuid.UUID, bool) {
	userID, ok := c.Get(ContextKeyUserID).(uuid.UUID)

	return userID, ok
}

// GetRole extracts the authenticated user's role name set by Authenticate.
func GetRole(c echo.Context) (string, bool) {
	role, ok := c.Get(ContextKeyRole).(string)

	return role, ok
}
