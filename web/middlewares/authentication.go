package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tipl.com/officepanel/security"
	"tipl.com/officepanel/web/common"
)

const identityKey = "identity"

// Authentication checks for a valid Bearer token carrying the given role
// and stores the identity in the gin context.
func Authentication(jwtSecret []byte, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// Fall back to the session cookie set by the frontend.
			cookie, err := c.Cookie("officepanel.SessionToken")
			if err != nil {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}

			tokenStr = cookie
		} else {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}

			tokenStr = parts[1]
		}

		identity, err := security.ParseIdentityToken(tokenStr, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired token"))
			return
		}

		if identity.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, common.NewErrorResponse("insufficient role"))
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// CurrentIdentity returns the identity placed by Authentication.
func CurrentIdentity(c *gin.Context) *security.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*security.Identity)
	return identity
}
