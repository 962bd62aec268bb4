package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is the header carrying the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns a UUID to every request unless the client already sent
// one, and echoes it on the response for log correlation.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		rid := ctx.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx.Set(RequestIDHeader, rid)
		ctx.Writer.Header().Set(RequestIDHeader, rid)
		ctx.Next()
	}
}
