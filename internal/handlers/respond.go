package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/sharanagouda/app-release-tracker/pkg/errors"
)

// abortWithError records the error on the context for the logging and
// error middleware, then writes its JSON form.
func abortWithError(c *gin.Context, err *apperrors.AppError) {
	c.Error(err)
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}
