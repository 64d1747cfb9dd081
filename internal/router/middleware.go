package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/session"
)

const sessionKey = "session"

// SessionMiddleware loads the session named in the path. Unknown ids are a 404;
// clients recover by POSTing to /api/sessions with the id to resume it.
func SessionMiddleware(sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("sessionId")
		s, err := sessions.Get(id)
		if err != nil {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Session not found", []global.ValidationError{
				{Field: "sessionId", Message: "No active session exists with this id", Code: "not_found"},
			}))
			c.Abort()
			return
		}

		c.Set(sessionKey, s)
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}
