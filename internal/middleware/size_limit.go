package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for boundaries, part headers and the base64
// expansion of JSON uploads on top of the file itself.
var multipartOverhead = int64(8 * 1024)

// SizeLimit caps the request body at maxBodyBytes plus an encoding allowance.
// Reading past the cap fails with *http.MaxBytesError, which upload handlers
// report as a too_large violation.
func SizeLimit(maxBodyBytes int64) gin.HandlerFunc {
	limit := maxBodyBytes*4/3 + multipartOverhead
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
