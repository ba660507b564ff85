package middleware

import (
	"net/http"
	"strings"

	"taskboard/internal/identity"
	"taskboard/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PrincipalKey - ключ контекста gin, под которым хранится model.Principal
const PrincipalKey = "principal"

// AuthMiddleware проверяет Bearer токен и кладет принципала в контекст
func AuthMiddleware(verifier identity.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Получаем токен из заголовка
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		// Проверяем формат "Bearer {token}"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		// Проверяем токен: сессионный или Firebase
		principal, err := verifier.Verify(c.Request.Context(), parts[1])
		if err != nil {
			zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("Token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// Сохраняем принципала в контексте
		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

// PrincipalFrom возвращает принципала, установленного AuthMiddleware
func PrincipalFrom(c *gin.Context) (model.Principal, bool) {
	value, exists := c.Get(PrincipalKey)
	if !exists {
		return "", false
	}
	principal, ok := value.(model.Principal)
	return principal, ok && principal != ""
}
