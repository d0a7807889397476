package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sugun-2430327/project-backend/internal/domain/entity"
)

const identityKey = "identity"

// authMiddleware validates the bearer token and attaches the resolved
// identity to the request context
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing Authorization header",
			})
			return
		}

		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "Authorization header must be a bearer token",
			})
			return
		}

		identity, err := s.tokens.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid or expired token",
			})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// callerIdentity retrieves the identity stored by authMiddleware
func callerIdentity(c *gin.Context) entity.Identity {
	v, _ := c.Get(identityKey)
	identity, _ := v.(entity.Identity)
	return identity
}
