// controllers/auth.go
package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"eventhall-backend/models"
	"eventhall-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Email             string `json:"email" binding:"required,email"`
	Username          string `json:"username" binding:"required,min=3,max=50"`
	FullName          string `json:"full_name" binding:"required"`
	Password          string `json:"password" binding:"required,min=8"`
	Phone             string `json:"phone" binding:"omitempty,phone"`
	Department        string `json:"department"`
	PreferredLanguage string `json:"preferred_language" binding:"omitempty,oneof=en he ar"`
}

type LoginInput struct {
	Identifier string `json:"identifier" binding:"required"` // email or username
	Password   string `json:"password" binding:"required"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type AuthController struct {
	db        *gorm.DB
	tokens    *utils.TokenManager
	blacklist utils.TokenBlacklist
	log       *zap.Logger
}

func NewAuthController(db *gorm.DB, tokens *utils.TokenManager, blacklist utils.TokenBlacklist, log *zap.Logger) *AuthController {
	return &AuthController{db: db, tokens: tokens, blacklist: blacklist, log: log}
}

// Register creates a staff account. Admins are created from the CLI.
func (h *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.TrimSpace(input.Username)

	// Check if email or username already exists
	var existing models.User
	err := h.db.Where("email = ? OR username = ?", email, username).First(&existing).Error
	if err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email or username already registered")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	user := models.User{
		Email:              email,
		Username:           username,
		FullName:           input.FullName,
		Password:           input.Password, // hashed in BeforeCreate
		Phone:              utils.NormalizePhone(input.Phone),
		Department:         input.Department,
		Role:               models.RoleStaff,
		PreferredLanguage:  input.PreferredLanguage,
		EmailNotifications: true,
		IsActive:           true,
	}
	if err := h.db.Create(&user).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	h.log.Info("user registered", zap.String("user_id", user.ID.String()))
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"user":    newUserResponse(&user),
	})
}

func (h *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	identifier := strings.TrimSpace(input.Identifier)

	var user models.User
	err := h.db.Where("email = ? OR username = ?", strings.ToLower(identifier), identifier).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !user.IsActive {
		utils.RespondWithError(c, http.StatusForbidden, "Account is disabled")
		return
	}

	token, claims, err := h.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		_ = c.Error(err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	// Update last login
	now := time.Now().UTC()
	h.db.Model(&user).Update("last_login", &now)
	user.LastLogin = &now

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"expires_at":   claims.ExpiresAt.Time,
		"user":         newUserResponse(&user),
	})
}

func (h *AuthController) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, newUserResponse(&user))
}

// Logout revokes the presented token until it would have expired.
func (h *AuthController) Logout(c *gin.Context) {
	claims, ok := utils.CurrentClaims(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid token")
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := h.blacklist.Revoke(c.Request.Context(), claims.ID, ttl); err != nil {
		_ = c.Error(err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to revoke token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthController) ChangePassword(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}
	if !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		utils.RespondWithError(c, http.StatusBadRequest, "Current password is incorrect")
		return
	}

	hashed, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}
	if err := h.db.Model(&user).Update("password", hashed).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
