package middleware

import (
	"net/http"
	"runtime/debug"

	"pricely/utils"

	"github.com/gin-gonic/gin"
)

// RecoveryMiddleware turns a handler panic into a 500 envelope and logs it
// under the request id assigned by RequestLogger.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		utils.Logger().Error().
			Interface("panic", recovered).
			Str("request_id", c.GetString(ContextRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Bytes("stack", debug.Stack()).
			Msg("handler panic")

		respondAbort(c, http.StatusInternalServerError, "Internal server error")
	})
}
