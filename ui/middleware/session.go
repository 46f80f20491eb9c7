package middleware

import (
	"log"
	"net/http"
	"strings"

	"leadboard/internal/auth"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// SessionVerifier turns a bearer token into a session
type SessionVerifier interface {
	Verify(token string) (auth.Session, error)
}

// RequireSession rejects requests without a valid admin bearer token and stores
// the verified session for handlers
func RequireSession(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
			return
		}

		sess, err := verifier.Verify(token)
		if err != nil {
			log.Printf("[RequireSession] Rejected token from %s: %v", c.ClientIP(), err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// SessionFrom returns the session stored by RequireSession, or an anonymous one
func SessionFrom(c *gin.Context) auth.Session {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(auth.Session); ok {
			return sess
		}
	}
	return auth.Anonymous()
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}
