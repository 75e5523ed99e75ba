package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sharanagouda/app-release-tracker/internal/database"
	"github.com/sharanagouda/app-release-tracker/internal/models"
	apperrors "github.com/sharanagouda/app-release-tracker/pkg/errors"
	"github.com/sharanagouda/app-release-tracker/pkg/logger"
	"github.com/sharanagouda/app-release-tracker/pkg/utils"
)

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, apperrors.BadRequest(err.Error()))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to hash password")
		abortWithError(c, apperrors.Internal("Failed to hash password"))
		return
	}

	user := models.User{
		ID:       utils.GenerateID(),
		Name:     input.Name,
		Email:    input.Email,
		Username: input.Username,
		Password: string(hashedPassword),
		Role:     models.RoleUser,
	}

	if result := database.DB.Create(&user); result.Error != nil {
		var existing models.User
		if err := database.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
			abortWithError(c, apperrors.Conflict("An account with this email already exists. Please sign in instead."))
			return
		}
		logger.Warn().Err(result.Error).Str("email", input.Email).Msg("Registration failed: unique violation")
		abortWithError(c, apperrors.Conflict("User with this email or username already exists"))
		return
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to generate token")
		abortWithError(c, apperrors.Internal("Failed to generate token"))
		return
	}

	logger.Info().Str("user_id", user.ID).Msg("User registered successfully")
	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  user,
	})
}

func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, apperrors.BadRequest(err.Error()))
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			abortWithError(c, apperrors.Unauthorized("Invalid email or password"))
		} else {
			abortWithError(c, apperrors.Internal("Database error"))
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		abortWithError(c, apperrors.Unauthorized("Invalid email or password"))
		return
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to generate token")
		abortWithError(c, apperrors.Internal("Failed to generate token"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout revokes the current token via the Redis blacklist. Without
// Redis the token simply ages out.
func Logout(c *gin.Context) {
	claimsVal, exists := c.Get("claims")
	if !exists {
		abortWithError(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	claims := claimsVal.(*utils.Claims)
	if err := database.BlacklistToken(claims.GetJTI(), utils.TokenTTL); err != nil {
		logger.Warn().Err(err).Msg("Failed to blacklist token")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the authenticated user's profile.
func Me(c *gin.Context) {
	userID := c.GetString("userId")
	if userID == "" {
		abortWithError(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		abortWithError(c, apperrors.NotFound("User not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
