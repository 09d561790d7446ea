package middleware

import (
	"time"

	"github.com/caratemple/forum/internal/session"
	"github.com/gin-gonic/gin"
)

// Session attaches the forum session context. It must run after
// sessions.Sessions so the underlying store is available.
func Session(tokenTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		session.FromGin(c, session.WithTokenTTL(tokenTTL))
		c.Next()
	}
}
