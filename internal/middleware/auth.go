package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sharanagouda/app-release-tracker/internal/database"
	"github.com/sharanagouda/app-release-tracker/internal/models"
	apperrors "github.com/sharanagouda/app-release-tracker/pkg/errors"
	"github.com/sharanagouda/app-release-tracker/pkg/utils"
)

// AuthMiddleware validates the bearer token, rejects revoked tokens and
// loads the caller's identity into the context for the write path to
// record.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithAppError(c, apperrors.Unauthorized("Authorization header required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWithAppError(c, apperrors.Unauthorized("Invalid authorization header format"))
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			abortWithAppError(c, apperrors.Unauthorized("Invalid or expired token: "+err.Error()))
			return
		}

		if database.IsTokenBlacklisted(claims.GetJTI()) {
			abortWithAppError(c, apperrors.Unauthorized("Token has been revoked"))
			return
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
			abortWithAppError(c, apperrors.Unauthorized("User not found or inactive"))
			return
		}

		c.Set("userId", user.ID)
		c.Set("userEmail", user.Email)
		c.Set("userName", user.Name)
		c.Set("userRole", string(user.Role))
		c.Set("claims", claims)

		c.Next()
	}
}

// OptionalAuthMiddleware attempts to validate the token if present, but
// does NOT abort if missing or invalid. Identity keys are set only when
// validation succeeds.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			c.Next()
			return
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
			c.Next()
			return
		}

		c.Set("userId", user.ID)
		c.Set("userEmail", user.Email)
		c.Set("userName", user.Name)
		c.Set("userRole", string(user.Role))

		c.Next()
	}
}

// AdminMiddleware gates mutating release routes behind the ADMIN role.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userId")
		if !exists {
			abortWithAppError(c, apperrors.Unauthorized("Unauthorized"))
			return
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
			abortWithAppError(c, apperrors.Unauthorized("User not found"))
			return
		}

		if user.Role != models.RoleAdmin {
			abortWithAppError(c, apperrors.Forbidden("Admin access required"))
			return
		}

		c.Next()
	}
}
