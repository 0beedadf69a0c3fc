package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pverdier/go-gestion-locative/shared/models"
	"github.com/pverdier/go-gestion-locative/shared/utils"
)

// CreateUnitRequest represents the create unit request
type CreateUnitRequest struct {
	PropertyID    string `json:"property_id" binding:"required"`
	UnitNumber    string `json:"unit_number" binding:"required"`
	Bedrooms      int    `json:"bedrooms"`
	Bathrooms     int    `json:"bathrooms"`
	SquareFootage int    `json:"square_footage"`
}

// UpdateUnitRequest represents the update unit request
type UpdateUnitRequest struct {
	UnitNumber    *string `json:"unit_number"`
	Bedrooms      *int    `json:"bedrooms"`
	Bathrooms     *int    `json:"bathrooms"`
	SquareFootage *int    `json:"square_footage"`
}

func handleCreateUnit(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUnitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		var property models.Property
		if err := db.Where("id = ?", req.PropertyID).First(&property).Error; err != nil {
			utils.NotFoundResponse(c, "Property not found")
			return
		}

		unit := models.Unit{
			ID:            uuid.NewString(),
			PropertyID:    req.PropertyID,
			UnitNumber:    req.UnitNumber,
			Bedrooms:      req.Bedrooms,
			Bathrooms:     req.Bathrooms,
			SquareFootage: req.SquareFootage,
		}

		if err := db.Create(&unit).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create unit")
			return
		}
		utils.CreatedResponse(c, "Unit created successfully", unit)
	}
}

func handleGetUnits(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var units []models.Unit
		query := db.Preload("Property")
		if propertyID := c.Query("property_id"); propertyID != "" {
			query = query.Where("property_id = ?", propertyID)
		}
		if err := query.Find(&units).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch units")
			return
		}
		utils.OKResponse(c, "Units retrieved successfully", units)
	}
}

func handleGetUnit(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var unit models.Unit
		if err := db.Preload("Property").Where("id = ?", c.Param("id")).First(&unit).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Unit not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch unit")
			}
			return
		}
		utils.OKResponse(c, "Unit retrieved successfully", unit)
	}
}

func handleUpdateUnit(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var unit models.Unit
		if err := db.Where("id = ?", c.Param("id")).First(&unit).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Unit not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch unit")
			}
			return
		}

		var req UpdateUnitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		if req.UnitNumber != nil {
			unit.UnitNumber = *req.UnitNumber
		}
		if req.Bedrooms != nil {
			unit.Bedrooms = *req.Bedrooms
		}
		if req.Bathrooms != nil {
			unit.Bathrooms = *req.Bathrooms
		}
		if req.SquareFootage != nil {
			unit.SquareFootage = *req.SquareFootage
		}

		if err := db.Save(&unit).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update unit")
			return
		}
		utils.OKResponse(c, "Unit updated successfully", unit)
	}
}

func handleDeleteUnit(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var unit models.Unit
		if err := db.Where("id = ?", c.Param("id")).First(&unit).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Unit not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch unit")
			}
			return
		}

		var tenantCount int64
		if err := db.Model(&models.Tenant{}).
			Where("unit_id = ? AND is_active = ?", unit.ID, true).
			Count(&tenantCount).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to check unit tenants")
			return
		}
		if tenantCount > 0 {
			utils.BadRequestResponse(c, "Cannot delete unit with an active tenant")
			return
		}

		if err := db.Delete(&unit).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete unit")
			return
		}
		utils.OKResponse(c, "Unit deleted successfully", nil)
	}
}

// handleGetCurrentTenant resolves the unit's occupant on demand: the most
// recently arrived active tenant. History stays queryable through the
// tenants table without the unit enumerating it.
func handleGetCurrentTenant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tenant models.Tenant
		err := db.Where("unit_id = ? AND is_active = ?", c.Param("id"), true).
			Order("entry_date DESC").
			First(&tenant).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Unit has no current tenant")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch current tenant")
			}
			return
		}
		utils.OKResponse(c, "Current tenant retrieved successfully", tenant)
	}
}
