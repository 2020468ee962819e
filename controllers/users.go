package controllers

import (
	"net/http"

	"eventhall-backend/models"
	"eventhall-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UpdateProfileInput struct {
	FullName              *string `json:"full_name" binding:"omitempty,min=1"`
	Phone                 *string `json:"phone" binding:"omitempty,phone"`
	Department            *string `json:"department"`
	PreferredLanguage     *string `json:"preferred_language" binding:"omitempty,oneof=en he ar"`
	EmailNotifications    *bool   `json:"email_notifications"`
	WhatsAppNotifications *bool   `json:"whatsapp_notifications"`
	PushNotifications     *bool   `json:"push_notifications"`
}

type UpdateUserInput struct {
	Role     *string `json:"role" binding:"omitempty,oneof=admin staff"`
	IsActive *bool   `json:"is_active"`
}

type UserController struct {
	db *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

func (h *UserController) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	updates := map[string]interface{}{}
	if input.FullName != nil {
		updates["full_name"] = *input.FullName
	}
	if input.Phone != nil {
		updates["phone"] = utils.NormalizePhone(*input.Phone)
	}
	if input.Department != nil {
		updates["department"] = *input.Department
	}
	if input.PreferredLanguage != nil {
		updates["preferred_language"] = *input.PreferredLanguage
	}
	if input.EmailNotifications != nil {
		updates["email_notifications"] = *input.EmailNotifications
	}
	if input.WhatsAppNotifications != nil {
		updates["whatsapp_notifications"] = *input.WhatsAppNotifications
	}
	if input.PushNotifications != nil {
		updates["push_notifications"] = *input.PushNotifications
	}

	if len(updates) > 0 {
		if err := h.db.Model(&user).Updates(updates).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
			return
		}
	}
	h.db.First(&user, "id = ?", userID)
	c.JSON(http.StatusOK, newUserResponse(&user))
}

// ListUsers is admin only.
func (h *UserController) ListUsers(c *gin.Context) {
	p := utils.ParsePagination(c)
	q := h.db.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	active, ok := queryBool(c, "is_active")
	if !ok {
		return
	}
	if active != nil {
		q = q.Where("is_active = ?", *active)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve users")
		return
	}
	var users []models.User
	if err := q.Order("full_name ASC").Offset(p.Offset()).Limit(p.PageSize).Find(&users).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve users")
		return
	}
	c.JSON(http.StatusOK, utils.NewPage(mapSlice(users, newUserResponse), total, p))
}

// UpdateUser lets an admin change a user's role or disable the account.
func (h *UserController) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id", "user")
	if !ok {
		return
	}
	var input UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", id).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}
	updates := map[string]interface{}{}
	if input.Role != nil {
		updates["role"] = *input.Role
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) > 0 {
		if err := h.db.Model(&user).Updates(updates).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update user")
			return
		}
	}
	h.db.First(&user, "id = ?", id)
	c.JSON(http.StatusOK, newUserResponse(&user))
}
