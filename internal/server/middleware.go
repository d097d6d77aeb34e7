package server

import (
	"github.com/gin-gonic/gin"

	authdomain "github.com/billablehq/billable/internal/auth/domain"
	profiledomain "github.com/billablehq/billable/internal/profile/domain"
	"github.com/billablehq/billable/internal/tenantctx"
)

const contextIdentityKey = "identity"

// AuthRequired authenticates the session cookie and binds the caller's tenant
// and profile into the request context. Everything behind it can rely on
// tenantctx being populated.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		identity, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.sessions.Clear(c)
			AbortWithError(c, err)
			return
		}

		ctx := tenantctx.WithTenantID(c.Request.Context(), identity.Profile.TenantID.Int64())
		ctx = tenantctx.WithUserID(ctx, identity.Profile.ID.Int64())
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextIdentityKey, identity)

		c.Next()
	}
}

// RequireRole gates a route to the given roles. Must run after AuthRequired.
func (s *Server) RequireRole(roles ...profiledomain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := currentIdentity(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		for _, role := range roles {
			if identity.Profile.Role == role {
				c.Next()
				return
			}
		}
		AbortWithError(c, ErrForbidden)
	}
}

func currentIdentity(c *gin.Context) (authdomain.Identity, bool) {
	value, ok := c.Get(contextIdentityKey)
	if !ok {
		return authdomain.Identity{}, false
	}
	identity, ok := value.(authdomain.Identity)
	return identity, ok
}
