package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// AccessTokenCookie is the cookie that carries the access token for
// browser clients
const AccessTokenCookie = "accessToken"

// SetAccessToken stores token in an HTTP-only cookie that expires with it
func SetAccessToken(c *gin.Context, token string, expiry time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, token, int(expiry.Seconds()), "/", "", secure, true)
}

// ClearAccessToken removes the access token cookie
func ClearAccessToken(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
}

// GetAccessToken extracts the token from the cookie or the Authorization
// header, cookie first
func GetAccessToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}

	return ""
}
