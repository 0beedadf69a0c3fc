package main

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pverdier/go-gestion-locative/shared/middleware"
	"github.com/pverdier/go-gestion-locative/shared/models"
	"github.com/pverdier/go-gestion-locative/shared/utils"
)

// UpdateProfileRequest represents the profile update request
type UpdateProfileRequest struct {
	FirstName *string         `json:"first_name"`
	LastName  *string         `json:"last_name"`
	Phone     *string         `json:"phone"`
	Address   *models.Address `json:"address"`
	AvatarURL *string         `json:"avatar_url"`
	Language  *string         `json:"language"`
	Theme     *string         `json:"theme"`
}

// handleGetProfile returns the authenticated landlord's profile.
func handleGetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.Where("id = ?", middleware.CurrentUserID(c)).First(&user).Error; err != nil {
			utils.NotFoundResponse(c, "User not found")
			return
		}
		utils.OKResponse(c, "Profile retrieved successfully", user)
	}
}

// handleUpdateProfile updates the authenticated landlord's profile.
func handleUpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.Where("id = ?", middleware.CurrentUserID(c)).First(&user).Error; err != nil {
			utils.NotFoundResponse(c, "User not found")
			return
		}

		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		if req.FirstName != nil {
			user.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			user.LastName = *req.LastName
		}
		if req.Phone != nil {
			user.Phone = *req.Phone
		}
		if req.Address != nil {
			user.Address = req.Address
		}
		if req.AvatarURL != nil {
			user.AvatarURL = *req.AvatarURL
		}
		if req.Language != nil {
			user.Language = *req.Language
		}
		if req.Theme != nil {
			user.Theme = *req.Theme
		}

		if err := db.Save(&user).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update profile")
			return
		}

		utils.OKResponse(c, "Profile updated successfully", user)
	}
}
