package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Limiter decides whether a client key may proceed
type Limiter interface {
	Allow(key string) bool
}

// Throttle answers 429 once the client IP exhausts its allowance
func Throttle(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.Allow(ip) {
			log.Printf("[Throttle] Too many attempts from %s on %s", ip, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts, try again later"})
			return
		}
		c.Next()
	}
}

// LimitBody caps the request body at maxBytes
func LimitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
