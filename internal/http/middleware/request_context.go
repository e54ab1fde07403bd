package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dlopezkluever/wizardirector/internal/platform/ctxutil"
)

// AttachRequestContext lifts the identity headers set by the gateway into
// the request context. An unparsable user id is treated as absent, which
// the handlers reject as unauthorized.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := &ctxutil.RequestData{
			RequestID: strings.TrimSpace(c.GetHeader("X-Request-ID")),
		}
		if raw := strings.TrimSpace(c.GetHeader("X-User-ID")); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				rd.UserID = id
			}
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), rd)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
