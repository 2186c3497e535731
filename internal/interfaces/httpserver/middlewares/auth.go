package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agri-api/internal/domain"
	"agri-api/internal/interfaces/httpserver/responses"
	"agri-api/internal/utils/platformerrors"
)

const principalContextKey = "principal"

// Authenticator resolves the caller from the Authorization header.
type Authenticator interface {
	Authenticate(header string) (domain.Principal, error)
}

// AuthMiddleware verifies the bearer token and places the principal on both
// the gin context and the request context.
func AuthMiddleware(authenticator Authenticator, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := authenticator.Authenticate(c.GetHeader("Authorization"))
		if err != nil {
			logger.Warn().
				Err(err).
				Str("path", c.FullPath()).
				Str("method", c.Request.Method).
				Msg("unauthenticated request")
			responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "auth-unauthorized")
			return
		}

		c.Set(principalContextKey, principal)
		c.Request = c.Request.WithContext(domain.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	val, ok := c.Get(principalContextKey)
	if !ok {
		return domain.PrincipalFromContext(c.Request.Context())
	}
	principal, ok := val.(domain.Principal)
	return principal, ok && principal.ID != ""
}
