package handler

import (
	"net/http"
	"strings"

	"maplemarket/internal/app/shop/service"
	"maplemarket/internal/app/shop/util"

	"github.com/gin-gonic/gin"
)

const actorContextKey = "actor"

// AuthMiddleware проверяет JWT токен в запросах для Gin
type AuthMiddleware struct {
	jwtManager *util.JWTManager
}

// NewAuthMiddleware создает новый middleware для аутентификации
func NewAuthMiddleware(jwtManager *util.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
	}
}

// Authenticate проверяет JWT токен и добавляет актора в контекст Gin
// Запросы без валидного токена отклоняются с 401
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Проверяем формат "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(actorContextKey, service.Actor{
			ID:         claims.UserID,
			Username:   claims.Username,
			IsAdmin:    claims.IsAdmin,
			IsSupplier: claims.IsSupplier,
		})

		c.Next()
	}
}

// actorFromContext извлекает актора, установленного Authenticate
func actorFromContext(c *gin.Context) (service.Actor, bool) {
	value, exists := c.Get(actorContextKey)
	if !exists {
		return service.Actor{}, false
	}

	actor, ok := value.(service.Actor)
	return actor, ok
}
