package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/at-ishikawa/quizdrill/internal/session"
)

const (
	SessionHeader = "X-Session-Token"
	SessionCookie = "quizdrill_session"
)

// SessionMiddleware puts the session user into the request context. The token
// comes from the header, then the cookie; a missing or malformed token is
// replaced by a fresh one, returned in both.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(SessionHeader)
		if token == "" {
			token, _ = c.Cookie(SessionCookie)
		}
		if !session.ValidToken(token) {
			token = session.NewToken()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     SessionCookie,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Header(SessionHeader, token)
		c.Request = c.Request.WithContext(session.WithUser(c.Request.Context(), token))
		c.Next()
	}
}
