package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/viciniti/booking-api/internal/handler"
	"github.com/viciniti/booking-api/internal/model"
	"github.com/viciniti/booking-api/pkg/auth"
)

const (
	ContextUserID   = "user_id"
	ContextUserType = "user_type"
)

type AuthMiddleware struct {
	jwt *auth.JWTService
}

func NewAuthMiddleware(jwt *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// Authenticate verifies the bearer token and sets user info in context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.claims(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid or missing token"))
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserType, claims.UserType)
		c.Next()
	}
}

// OptionalAuthenticate sets user info when a valid token is present but never
// rejects the request. Routes that personalize responses for logged-in users
// use this.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := m.claims(c); ok {
			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextUserType, claims.UserType)
		}
		c.Next()
	}
}

// RequireProvider rejects requests from non-provider accounts. Must run after
// Authenticate.
func (m *AuthMiddleware) RequireProvider() gin.HandlerFunc {
	return func(c *gin.Context) {
		userType, exists := c.Get(ContextUserType)
		if !exists || userType.(model.UserType) != model.UserTypeProvider {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("provider account required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) claims(c *gin.Context) (*auth.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}
	claims, err := m.jwt.ValidateAccessToken(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

// UserID returns the authenticated user's id from context.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
