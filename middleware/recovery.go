// Package middleware provides the gin middlewares of the quota service:
// admission enforcement per scope, panic recovery, request logging and
// trace propagation.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/recallio/quotakit/errcode"
	"github.com/recallio/quotakit/logger"
)

// Recovery catches handler panics, logs the stack and answers with the
// generic 500 envelope. The stack never reaches the client.
func Recovery() gin.HandlerFunc {
	log := logger.GetLogger("http")

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.ErrorCtx(c.Request.Context(), "panic recovered",
					zap.Any("panic", r),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.String("client_ip", c.ClientIP()),
					zap.String("stack", string(debug.Stack())),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError,
					errcode.ErrInternal.ToEnvelope(-1))
			}
		}()

		c.Next()
	}
}
