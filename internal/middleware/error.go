package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/sharanagouda/app-release-tracker/pkg/errors"
	"github.com/sharanagouda/app-release-tracker/pkg/logger"
)

// abortWithAppError records the error on the context and writes its
// JSON form.
func abortWithAppError(c *gin.Context, err *apperrors.AppError) {
	c.Error(err)
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

// ErrorHandlerMiddleware recovers panics and maps AppErrors attached to
// the context into JSON responses. Handlers that already wrote a
// response are left alone.
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.Error().
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", stack).
					Msg("Panic recovered")

				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   "Internal Server Error",
					"message": "An unexpected error occurred",
				})
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		if appErr, ok := err.(*apperrors.AppError); ok {
			c.JSON(appErr.Code, gin.H{"error": appErr.Message})
			return
		}

		logger.Error().Err(err).Msg("Unhandled request error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}
