package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tipl.com/officepanel/realtime"
	"tipl.com/officepanel/security"
	"tipl.com/officepanel/web/common"
)

// WebSocketHandler upgrades a panel connection. Browsers cannot set an
// Authorization header on websocket dials, so the token rides in the
// query string. The room joined follows the token's role: employees get
// their own room, masters share one.
func WebSocketHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := security.ParseIdentityToken(c.Query("token"), env.SigningSecret())
		if err != nil {
			c.JSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired token"))
			return
		}

		var rooms []string
		switch identity.Role {
		case security.RoleMaster:
			rooms = []string{realtime.MasterRoom}
		case security.RoleEmployee:
			rooms = []string{realtime.EmployeeRoom(identity.EmployeeID)}
		}

		if err := env.Hub.ServeWS(c.Writer, c.Request, rooms); err != nil {
			// Upgrade failures already wrote a response.
			return
		}
	}
}
