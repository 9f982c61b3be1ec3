package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	allowOrigin  = "*"
	allowHeaders = "Content-Type"
	allowMethods = "GET, POST, OPTIONS"
)

// CORS stamps the storefront CORS headers on every response and answers
// preflight requests with an empty 200.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", allowOrigin)
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Allow-Methods", allowMethods)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}
