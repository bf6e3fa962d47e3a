// Package middleware holds the gin middleware shared by the v1 routes.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nishantd01/sheetdesk/auth"
)

const (
	// EmailKey and IsAdminKey are the gin context keys the auth middleware
	// populates for downstream handlers.
	EmailKey   = "email"
	IsAdminKey = "isAdmin"

	// TokenCookie is the httpOnly cookie fallback set at login time.
	TokenCookie = "token"
)

// VerifyToken validates the bearer token from the Authorization header or
// the token cookie and attaches the caller's email and admin flag. Requests
// without a valid token fail with 401.
func VerifyToken(jwt *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			if cookie, err := c.Cookie(TokenCookie); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": auth.ErrMissingToken.Error()})
			return
		}

		claims, err := jwt.Validate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": auth.ErrInvalidToken.Error()})
			return
		}

		c.Set(EmailKey, claims.Email)
		c.Set(IsAdminKey, claims.IsAdmin)
		c.Next()
	}
}

// CallerEmail returns the authenticated email set by VerifyToken.
func CallerEmail(c *gin.Context) string {
	email, _ := c.Get(EmailKey)
	s, _ := email.(string)
	return s
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
