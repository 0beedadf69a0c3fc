package main

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pverdier/go-gestion-locative/shared/middleware"
	"github.com/pverdier/go-gestion-locative/shared/models"
	"github.com/pverdier/go-gestion-locative/shared/utils"
)

// DashboardStats aggregates the landlord's portfolio figures shown on the
// back office home screen.
type DashboardStats struct {
	TotalProperties  int64            `json:"total_properties"`
	TotalUnits       int64            `json:"total_units"`
	OccupiedUnits    int64            `json:"occupied_units"`
	OccupancyRate    float64          `json:"occupancy_rate"`
	ActiveTenants    int64            `json:"active_tenants"`
	MonthlyRevenue   float64          `json:"monthly_revenue"`
	OutstandingCount int64            `json:"outstanding_count"`
	OutstandingTotal float64          `json:"outstanding_total"`
	CollectionRate   float64          `json:"collection_rate"`
	AvgUnitsPerProp  float64          `json:"avg_units_per_property"`
	PropertyTypes    map[string]int64 `json:"property_types"`
	RecentTenants    []models.Tenant  `json:"recent_tenants"`
	ExpiringLeases   []models.Tenant  `json:"expiring_leases"`
}

// handleGetDashboardStats computes portfolio statistics for the logged-in
// landlord. Results are cached in Redis per user for cacheTTL since the
// aggregation touches every table.
func handleGetDashboardStats(db *gorm.DB, cacheTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.CurrentUserID(c)
		if userID == "" {
			utils.UnauthorizedResponse(c, "Authentication required")
			return
		}

		cacheKey := "dashboard:stats:" + userID
		if cached, err := utils.CacheGet(cacheKey); err == nil {
			var stats DashboardStats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				utils.OKResponse(c, "Dashboard stats retrieved successfully", stats)
				return
			}
		}

		stats, err := computeDashboardStats(db, userID)
		if err != nil {
			logrus.WithError(err).WithField("user_id", userID).
				Error("Dashboard aggregation failed")
			utils.InternalServerErrorResponse(c, "Failed to compute dashboard stats")
			return
		}

		if encoded, err := json.Marshal(stats); err == nil {
			if err := utils.CacheSet(cacheKey, string(encoded), cacheTTL); err != nil {
				logrus.WithError(err).Warn("Failed to cache dashboard stats")
			}
		}

		utils.OKResponse(c, "Dashboard stats retrieved successfully", stats)
	}
}

func computeDashboardStats(db *gorm.DB, ownerID string) (*DashboardStats, error) {
	stats := &DashboardStats{PropertyTypes: map[string]int64{}}

	ownedUnits := db.Model(&models.Unit{}).
		Joins("JOIN properties ON properties.id = units.property_id").
		Where("properties.owner_id = ?", ownerID)
	ownedTenants := func() *gorm.DB {
		return db.Model(&models.Tenant{}).
			Joins("JOIN units ON units.id = tenants.unit_id").
			Joins("JOIN properties ON properties.id = units.property_id").
			Where("properties.owner_id = ?", ownerID)
	}

	err := db.Model(&models.Property{}).
		Where("owner_id = ?", ownerID).
		Count(&stats.TotalProperties).Error
	if err != nil {
		return nil, err
	}

	if err := ownedUnits.Session(&gorm.Session{}).Count(&stats.TotalUnits).Error; err != nil {
		return nil, err
	}
	if err := ownedUnits.Session(&gorm.Session{}).Where("units.is_occupied = ?", true).Count(&stats.OccupiedUnits).Error; err != nil {
		return nil, err
	}
	if stats.TotalUnits > 0 {
		stats.OccupancyRate = float64(stats.OccupiedUnits) / float64(stats.TotalUnits) * 100
	}
	if stats.TotalProperties > 0 {
		stats.AvgUnitsPerProp = float64(stats.TotalUnits) / float64(stats.TotalProperties)
	}

	if err := ownedTenants().Where("tenants.is_active = ?", true).Count(&stats.ActiveTenants).Error; err != nil {
		return nil, err
	}

	var revenue struct{ Total float64 }
	err = ownedTenants().Where("tenants.is_active = ?", true).
		Select("COALESCE(SUM(tenants.monthly_rent + tenants.monthly_charge), 0) AS total").
		Scan(&revenue).Error
	if err != nil {
		return nil, err
	}
	stats.MonthlyRevenue = revenue.Total

	ownedBills := func() *gorm.DB {
		return db.Model(&models.Bill{}).
			Joins("JOIN tenants ON tenants.id = bills.tenant_id").
			Joins("JOIN units ON units.id = tenants.unit_id").
			Joins("JOIN properties ON properties.id = units.property_id").
			Where("properties.owner_id = ?", ownerID)
	}

	var outstanding struct {
		Count int64
		Total float64
	}
	err = ownedBills().Where("bills.is_paid = ?", false).
		Select("COUNT(*) AS count, COALESCE(SUM(bills.amount), 0) AS total").
		Scan(&outstanding).Error
	if err != nil {
		return nil, err
	}
	stats.OutstandingCount = outstanding.Count
	stats.OutstandingTotal = outstanding.Total

	var totalBills int64
	if err := ownedBills().Count(&totalBills).Error; err != nil {
		return nil, err
	}
	if totalBills > 0 {
		stats.CollectionRate = float64(totalBills-outstanding.Count) / float64(totalBills) * 100
	}

	var typeCounts []struct {
		PropertyType string
		Count        int64
	}
	err = db.Model(&models.Property{}).
		Where("owner_id = ?", ownerID).
		Select("property_type, COUNT(*) AS count").
		Group("property_type").
		Scan(&typeCounts).Error
	if err != nil {
		return nil, err
	}
	for _, tc := range typeCounts {
		stats.PropertyTypes[tc.PropertyType] = tc.Count
	}

	err = ownedTenants().Where("tenants.is_active = ?", true).
		Order("tenants.entry_date DESC").
		Limit(5).
		Find(&stats.RecentTenants).Error
	if err != nil {
		return nil, err
	}

	// Leases running out within the next 90 days.
	horizon := time.Now().AddDate(0, 0, 90)
	err = ownedTenants().Where("tenants.is_active = ?", true).
		Where("tenants.lease_end_date IS NOT NULL AND tenants.lease_end_date <= ?", horizon).
		Order("tenants.lease_end_date ASC").
		Find(&stats.ExpiringLeases).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}
