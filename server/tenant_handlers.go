package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pverdier/go-gestion-locative/shared/models"
	"github.com/pverdier/go-gestion-locative/shared/utils"
)

// CreateTenantRequest represents the create tenant request
type CreateTenantRequest struct {
	Title           string     `json:"title"`
	FirstName       string     `json:"first_name" binding:"required"`
	LastName        string     `json:"last_name" binding:"required"`
	PhoneNumber     string     `json:"phone_number"`
	Email           string     `json:"email"`
	MonthlyRent     float64    `json:"monthly_rent" binding:"required,gte=0"`
	MonthlyCharge   float64    `json:"monthly_charge" binding:"gte=0"`
	UnitID          string     `json:"unit_id" binding:"required"`
	EntryDate       *time.Time `json:"entry_date"`
	LeaseStartDate  *time.Time `json:"lease_start_date"`
	LeaseEndDate    *time.Time `json:"lease_end_date"`
	SecurityDeposit float64    `json:"security_deposit"`
	Notes           string     `json:"notes"`
}

// UpdateTenantRequest represents the update tenant request
type UpdateTenantRequest struct {
	Title           *string    `json:"title"`
	FirstName       *string    `json:"first_name"`
	LastName        *string    `json:"last_name"`
	PhoneNumber     *string    `json:"phone_number"`
	Email           *string    `json:"email"`
	MonthlyRent     *float64   `json:"monthly_rent"`
	MonthlyCharge   *float64   `json:"monthly_charge"`
	EntryDate       *time.Time `json:"entry_date"`
	IsActive        *bool      `json:"is_active"`
	LeaseStartDate  *time.Time `json:"lease_start_date"`
	LeaseEndDate    *time.Time `json:"lease_end_date"`
	SecurityDeposit *float64   `json:"security_deposit"`
	Notes           *string    `json:"notes"`
}

// handleCreateTenant registers a tenant and marks the unit occupied.
func handleCreateTenant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTenantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		var unit models.Unit
		if err := db.Where("id = ?", req.UnitID).First(&unit).Error; err != nil {
			utils.NotFoundResponse(c, "Unit not found")
			return
		}

		entryDate := time.Now()
		if req.EntryDate != nil {
			entryDate = *req.EntryDate
		}

		tenant := models.Tenant{
			ID:              uuid.NewString(),
			Title:           req.Title,
			FirstName:       req.FirstName,
			LastName:        req.LastName,
			PhoneNumber:     req.PhoneNumber,
			Email:           req.Email,
			MonthlyRent:     req.MonthlyRent,
			MonthlyCharge:   req.MonthlyCharge,
			UnitID:          req.UnitID,
			EntryDate:       entryDate,
			IsActive:        true,
			LeaseStartDate:  req.LeaseStartDate,
			LeaseEndDate:    req.LeaseEndDate,
			SecurityDeposit: req.SecurityDeposit,
			Notes:           req.Notes,
		}

		if err := db.Create(&tenant).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create tenant")
			return
		}

		if err := db.Model(&unit).Update("is_occupied", true).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update unit occupancy")
			return
		}

		utils.CreatedResponse(c, "Tenant created successfully", tenant)
	}
}

func handleGetTenants(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tenants []models.Tenant
		query := db.Preload("Unit")
		if c.Query("active") == "true" {
			query = query.Where("is_active = ?", true)
		}
		if err := query.Find(&tenants).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch tenants")
			return
		}
		utils.OKResponse(c, "Tenants retrieved successfully", tenants)
	}
}

func handleGetTenant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tenant models.Tenant
		if err := db.Preload("Unit").Where("id = ?", c.Param("id")).First(&tenant).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Tenant not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch tenant")
			}
			return
		}
		utils.OKResponse(c, "Tenant retrieved successfully", tenant)
	}
}

func handleUpdateTenant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tenant models.Tenant
		if err := db.Where("id = ?", c.Param("id")).First(&tenant).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Tenant not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch tenant")
			}
			return
		}

		var req UpdateTenantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		if req.Title != nil {
			tenant.Title = *req.Title
		}
		if req.FirstName != nil {
			tenant.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			tenant.LastName = *req.LastName
		}
		if req.PhoneNumber != nil {
			tenant.PhoneNumber = *req.PhoneNumber
		}
		if req.Email != nil {
			tenant.Email = *req.Email
		}
		if req.MonthlyRent != nil {
			tenant.MonthlyRent = *req.MonthlyRent
		}
		if req.MonthlyCharge != nil {
			tenant.MonthlyCharge = *req.MonthlyCharge
		}
		if req.EntryDate != nil {
			tenant.EntryDate = *req.EntryDate
		}
		if req.LeaseStartDate != nil {
			tenant.LeaseStartDate = req.LeaseStartDate
		}
		if req.LeaseEndDate != nil {
			tenant.LeaseEndDate = req.LeaseEndDate
		}
		if req.SecurityDeposit != nil {
			tenant.SecurityDeposit = *req.SecurityDeposit
		}
		if req.Notes != nil {
			tenant.Notes = *req.Notes
		}

		movingOut := req.IsActive != nil && !*req.IsActive && tenant.IsActive
		if req.IsActive != nil {
			tenant.IsActive = *req.IsActive
		}

		if err := db.Save(&tenant).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update tenant")
			return
		}

		if movingOut {
			if err := releaseUnitIfVacant(db, tenant.UnitID); err != nil {
				utils.InternalServerErrorResponse(c, "Failed to update unit occupancy")
				return
			}
		}

		utils.OKResponse(c, "Tenant updated successfully", tenant)
	}
}

// handleMoveOutTenant deactivates a tenant. The row is kept so billing
// history survives the move-out.
func handleMoveOutTenant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tenant models.Tenant
		if err := db.Where("id = ?", c.Param("id")).First(&tenant).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Tenant not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch tenant")
			}
			return
		}

		if tenant.IsActive {
			if err := db.Model(&tenant).Update("is_active", false).Error; err != nil {
				utils.InternalServerErrorResponse(c, "Failed to deactivate tenant")
				return
			}
			if err := releaseUnitIfVacant(db, tenant.UnitID); err != nil {
				utils.InternalServerErrorResponse(c, "Failed to update unit occupancy")
				return
			}
		}

		utils.OKResponse(c, "Tenant moved out successfully", nil)
	}
}

func handleGetTenantBills(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tenant models.Tenant
		if err := db.Where("id = ?", c.Param("id")).First(&tenant).Error; err != nil {
			utils.NotFoundResponse(c, "Tenant not found")
			return
		}

		var bills []models.Bill
		err := db.Where("tenant_id = ?", tenant.ID).
			Order("year DESC, month DESC").
			Find(&bills).Error
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch bills")
			return
		}
		utils.OKResponse(c, "Bills retrieved successfully", bills)
	}
}

// releaseUnitIfVacant clears the occupancy flag once no active tenant
// remains on the unit.
func releaseUnitIfVacant(db *gorm.DB, unitID string) error {
	var activeCount int64
	err := db.Model(&models.Tenant{}).
		Where("unit_id = ? AND is_active = ?", unitID, true).
		Count(&activeCount).Error
	if err != nil {
		return err
	}
	if activeCount > 0 {
		return nil
	}
	return db.Model(&models.Unit{}).Where("id = ?", unitID).Update("is_occupied", false).Error
}
