package middleware

import (
	"context"
	"net/http"
	"strings"

	"showpro/internal/access"
	"showpro/internal/config"
	"showpro/internal/identity"
	"showpro/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RoleResolver возвращает роль пользователя по его id
type RoleResolver interface {
	Resolve(ctx context.Context, userID string) (string, error)
}

// Claims - поля токена, выданного провайдером аутентификации
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Auth проверяет Bearer токен (HS256), определяет роль пользователя и
// кладет Identity в контекст запроса.
func Auth(cfg config.AuthConfig, roles RoleResolver) gin.HandlerFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	secret := []byte(cfg.JWTSecret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.Header("WWW-Authenticate", `Bearer realm="showpro"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		var claims Claims
		tok, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
			return secret, nil
		})
		if err != nil || !tok.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token subject"})
			return
		}

		ctx := c.Request.Context()
		role, err := roles.Resolve(ctx, userID.String())
		if err != nil {
			logger.WithContext(ctx).Error("Failed to resolve role", "error", err, "user_id", userID.String())
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve role"})
			return
		}

		id := identity.Identity{UserID: userID, Email: claims.Email, Role: role}
		c.Request = c.Request.WithContext(identity.WithIdentity(ctx, id))
		c.Next()
	}
}

// actionFor сопоставляет HTTP метод действию из матрицы прав
func actionFor(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return access.Read
	case http.MethodPost:
		return access.Create
	case http.MethodPut, http.MethodPatch:
		return access.Update
	case http.MethodDelete:
		return access.Delete
	}
	return ""
}

// RequirePermission пропускает запрос, если роль вызывающего разрешает
// действие, выведенное из HTTP метода, над resource.
func RequirePermission(resource string) gin.HandlerFunc {
	return requirePermission(resource, "")
}

// RequireAction - как RequirePermission, но с явным действием
// (POST /emails/mark-sent - это update, а не create).
func RequireAction(resource, action string) gin.HandlerFunc {
	return requirePermission(resource, action)
}

func requirePermission(resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity.FromContext(c.Request.Context())
		if !ok || id.IsZero() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		act := action
		if act == "" {
			act = actionFor(c.Request.Method)
		}
		if !access.Allowed(id.Role, resource, act) {
			logger.WithContext(c.Request.Context()).Warn("Permission denied",
				"role", id.Role, "resource", resource, "action", act)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}
