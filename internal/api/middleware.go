package api

import (
	"strconv"
	"time"

	"shop-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUserID    = "userID"
	ctxIsAdmin   = "isAdmin"
	ctxSessionID = "sessionID"

	sessionCookie    = "shop_session"
	sessionCookieAge = 72 * 3600
)

// identityMiddleware resolves the caller's identity. Authentication
// itself happens upstream; the trusted proxy injects X-User-Id and
// X-User-Role for authenticated callers. Guests are tracked by a
// session cookie, minted here on first contact.
func identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if idStr := c.GetHeader("X-User-Id"); idStr != "" {
			if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
				c.Set(ctxUserID, id)
			}
		}
		if c.GetHeader("X-User-Role") == "admin" {
			c.Set(ctxIsAdmin, true)
		}

		sid, err := c.Cookie(sessionCookie)
		if err != nil || sid == "" {
			sid = uuid.New().String()
			c.SetCookie(sessionCookie, sid, sessionCookieAge, "/", "", false, true)
		}
		c.Set(ctxSessionID, sid)

		c.Next()
	}
}

// requireUser rejects unauthenticated callers
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ctxUserID); !ok {
			c.AbortWithStatusJSON(401, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// requireAdmin rejects callers without the admin role
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ctxIsAdmin) {
			c.AbortWithStatusJSON(403, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

// userID returns the authenticated caller's ID; ok is false for guests
func userID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// sessionID returns the caller's guest session ID
func sessionID(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
