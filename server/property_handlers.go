package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pverdier/go-gestion-locative/shared/middleware"
	"github.com/pverdier/go-gestion-locative/shared/models"
	"github.com/pverdier/go-gestion-locative/shared/utils"
)

// CreatePropertyRequest represents the create property request
type CreatePropertyRequest struct {
	Address      models.Address      `json:"address" binding:"required"`
	Nickname     string              `json:"nickname"`
	PropertyType models.PropertyType `json:"property_type" binding:"required"`
	ImageURL     string              `json:"image_url"`
}

// UpdatePropertyRequest represents the update property request
type UpdatePropertyRequest struct {
	Address      *models.Address      `json:"address"`
	Nickname     *string              `json:"nickname"`
	PropertyType *models.PropertyType `json:"property_type"`
	ImageURL     *string              `json:"image_url"`
}

// ownedProperty fetches a property and checks it belongs to the caller.
func ownedProperty(c *gin.Context, db *gorm.DB, id string) (*models.Property, bool) {
	var property models.Property
	if err := db.Where("id = ? AND owner_id = ?", id, middleware.CurrentUserID(c)).First(&property).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFoundResponse(c, "Property not found")
		} else {
			utils.InternalServerErrorResponse(c, "Failed to fetch property")
		}
		return nil, false
	}
	return &property, true
}

func handleCreateProperty(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreatePropertyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		property := models.Property{
			ID:           uuid.NewString(),
			OwnerID:      middleware.CurrentUserID(c),
			Address:      req.Address,
			Nickname:     req.Nickname,
			PropertyType: req.PropertyType,
			ImageURL:     req.ImageURL,
		}

		if err := db.Create(&property).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create property")
			return
		}

		utils.CreatedResponse(c, "Property created successfully", property)
	}
}

func handleGetProperties(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var properties []models.Property
		err := db.Preload("Units").
			Where("owner_id = ?", middleware.CurrentUserID(c)).
			Find(&properties).Error
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch properties")
			return
		}
		utils.OKResponse(c, "Properties retrieved successfully", properties)
	}
}

func handleGetProperty(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var property models.Property
		err := db.Preload("Units").
			Where("id = ? AND owner_id = ?", c.Param("id"), middleware.CurrentUserID(c)).
			First(&property).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Property not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch property")
			}
			return
		}
		utils.OKResponse(c, "Property retrieved successfully", property)
	}
}

func handleUpdateProperty(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		property, ok := ownedProperty(c, db, c.Param("id"))
		if !ok {
			return
		}

		var req UpdatePropertyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		if req.Address != nil {
			property.Address = *req.Address
		}
		if req.Nickname != nil {
			property.Nickname = *req.Nickname
		}
		if req.PropertyType != nil {
			property.PropertyType = *req.PropertyType
		}
		if req.ImageURL != nil {
			property.ImageURL = *req.ImageURL
		}

		if err := db.Save(property).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update property")
			return
		}
		utils.OKResponse(c, "Property updated successfully", property)
	}
}

func handleDeleteProperty(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		property, ok := ownedProperty(c, db, c.Param("id"))
		if !ok {
			return
		}

		var unitCount int64
		if err := db.Model(&models.Unit{}).Where("property_id = ?", property.ID).Count(&unitCount).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to check property units")
			return
		}
		if unitCount > 0 {
			utils.BadRequestResponse(c, "Cannot delete property with existing units")
			return
		}

		if err := db.Delete(property).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete property")
			return
		}
		utils.OKResponse(c, "Property deleted successfully", nil)
	}
}
