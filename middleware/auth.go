package middleware

import (
	"net/http"
	"strings"

	"hms/models"
	"hms/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const principalKey = "principal"

// JWTAuthMiddleware validates the bearer token and stores the caller's
// Principal in the request context.
func JWTAuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "Missing or invalid Authorization header")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.ExtractClaims(secret, tokenString)
		if err != nil {
			zap.L().Debug("Token rejected", zap.Error(err))
			utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "Invalid token")
			return
		}
		role, ok := models.ParseRole(claims.Role)
		if !ok {
			utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "Unknown role in token")
			return
		}

		c.Set(principalKey, models.NewPrincipal(claims.Subject, role))
		c.Next()
	}
}

// CurrentPrincipal returns the caller set by JWTAuthMiddleware.
func CurrentPrincipal(c *gin.Context) (models.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}

// SetPrincipal is used by tests and internal routes to bypass token parsing.
func SetPrincipal(c *gin.Context, p models.Principal) {
	c.Set(principalKey, p)
}

// RequireCapability aborts with 403 unless the caller's role grants capability.
func RequireCapability(capability models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if !ok {
			utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "Not authenticated")
			return
		}
		if !p.Can(capability) {
			utils.JSONError(c, http.StatusForbidden, "Forbidden", "Role "+string(p.Role)+" may not "+string(capability))
			return
		}
		c.Next()
	}
}
