package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// VisitorIDKey is the gin context key holding the caller's visitor ID.
	VisitorIDKey = "visitor_id"
	// VisitorCookieName is the cookie that carries the visitor ID between requests.
	VisitorCookieName = "contact_visitor"
	// VisitorHeader lets non-browser clients supply their own visitor ID.
	VisitorHeader = "X-Visitor-ID"

	visitorCookieMaxAge = 365 * 24 * 60 * 60
)

// VisitorMiddleware identifies the caller so each visitor gets its own contact
// form and cooldown. An explicit header wins over the cookie; a visitor without
// either is issued a new ID.
func VisitorMiddleware(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		visitorID := c.GetHeader(VisitorHeader)
		if _, err := uuid.Parse(visitorID); err != nil {
			visitorID = ""
		}

		if visitorID == "" {
			if cookie, err := c.Cookie(VisitorCookieName); err == nil {
				if _, err := uuid.Parse(cookie); err == nil {
					visitorID = cookie
				}
			}
		}

		if visitorID == "" {
			visitorID = uuid.New().String()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(VisitorCookieName, visitorID, visitorCookieMaxAge, "/", "", secure, true)
		c.Set(VisitorIDKey, visitorID)
		c.Header(VisitorHeader, visitorID)

		c.Next()
	}
}

// GetVisitorID returns the visitor ID set by VisitorMiddleware.
func GetVisitorID(c *gin.Context) string {
	return c.GetString(VisitorIDKey)
}
