package middleware

import (
	"net/http"

	"investment-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// MaxBodySize caps the request body at maxBytes. A declared Content-Length
// above the cap is rejected up front; otherwise the reader fails once the
// cap is crossed and binding reports 413.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			abort(c, ErrBodyTooLarge())
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// ErrBodyTooLarge is the error returned for oversized request bodies.
func ErrBodyTooLarge() *apperror.AppError {
	return apperror.New(apperror.CodeValidation, "Request body too large", http.StatusRequestEntityTooLarge)
}
