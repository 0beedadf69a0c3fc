package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pverdier/go-gestion-locative/billing"
	"github.com/pverdier/go-gestion-locative/shared/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Property{}, &models.Unit{}, &models.Tenant{}, &models.Bill{},
	))
	return db
}

func seedUnit(t *testing.T, db *gorm.DB) *models.Unit {
	t.Helper()

	owner := &models.User{
		ID:        uuid.NewString(),
		FirstName: "Pierre",
		LastName:  "Verdier",
		Email:     uuid.NewString() + "@example.com",
		Password:  "x",
	}
	require.NoError(t, db.Create(owner).Error)

	property := &models.Property{
		ID:           uuid.NewString(),
		OwnerID:      owner.ID,
		PropertyType: models.PropertyTypeApartment,
		Address:      models.Address{Street: "3 rue Centrale", City: "Lyon", ZipCode: "69002", Country: "France"},
	}
	require.NoError(t, db.Create(property).Error)

	unit := &models.Unit{ID: uuid.NewString(), PropertyID: property.ID, UnitNumber: "1A"}
	require.NoError(t, db.Create(unit).Error)
	return unit
}

func seedActiveTenant(t *testing.T, db *gorm.DB, unitID string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{
		ID:            uuid.NewString(),
		FirstName:     "Claire",
		LastName:      "Moreau",
		MonthlyRent:   1500,
		MonthlyCharge: 100,
		UnitID:        unitID,
		EntryDate:     time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
	}
	require.NoError(t, db.Create(tenant).Error)
	require.NoError(t, db.Model(&models.Unit{}).Where("id = ?", unitID).
		Update("is_occupied", true).Error)
	return tenant
}

func seedBill(t *testing.T, db *gorm.DB, tenantID string, paid bool) *models.Bill {
	t.Helper()
	bill := &models.Bill{
		ID:       uuid.NewString(),
		TenantID: tenantID,
		Amount:   1600,
		Month:    6,
		Year:     2025,
		IsPaid:   paid,
		DueDate:  time.Date(2025, time.July, 5, 0, 0, 0, 0, time.UTC),
	}
	if paid {
		paidAt := time.Date(2025, time.July, 2, 9, 30, 0, 0, time.UTC)
		bill.PaidAt = &paidAt
	}
	require.NoError(t, db.Create(bill).Error)
	return bill
}

func perform(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type recordingPublisher struct {
	events []billing.Event
}

func (r *recordingPublisher) Publish(event billing.Event) {
	r.events = append(r.events, event)
}

func TestMarkBillPaidSetsPaidAtOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	unit := seedUnit(t, db)
	tenant := seedActiveTenant(t, db, unit.ID)
	bill := seedBill(t, db, tenant.ID, false)

	router := gin.New()
	router.PUT("/bills/:id/pay", handleMarkBillPaid(db, nil))

	w := perform(router, http.MethodPut, "/bills/"+bill.ID+"/pay", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var paid models.Bill
	require.NoError(t, db.First(&paid, "id = ?", bill.ID).Error)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	firstPaidAt := *paid.PaidAt

	// Paying again must not overwrite the original payment timestamp.
	w = perform(router, http.MethodPut, "/bills/"+bill.ID+"/pay", nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.First(&paid, "id = ?", bill.ID).Error)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, firstPaidAt, *paid.PaidAt)
}

func TestMarkBillPaidNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)

	router := gin.New()
	router.PUT("/bills/:id/pay", handleMarkBillPaid(db, nil))

	w := perform(router, http.MethodPut, "/bills/nope/pay", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkBillPaidPublishesEventOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	unit := seedUnit(t, db)
	tenant := seedActiveTenant(t, db, unit.ID)
	bill := seedBill(t, db, tenant.ID, false)

	publisher := &recordingPublisher{}
	router := gin.New()
	router.PUT("/bills/:id/pay", handleMarkBillPaid(db, publisher))

	w := perform(router, http.MethodPut, "/bills/"+bill.ID+"/pay", nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	assert.Equal(t, billing.EventBillPaid, event.Type)
	assert.Equal(t, bill.ID, event.BillID)
	assert.Equal(t, tenant.ID, event.TenantID)
	assert.Equal(t, bill.Amount, event.Amount)

	// The already-paid no-op must not emit a second event.
	w = perform(router, http.MethodPut, "/bills/"+bill.ID+"/pay", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, publisher.events, 1)
}

func TestGetReceiptUnpaidBill(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	unit := seedUnit(t, db)
	tenant := seedActiveTenant(t, db, unit.ID)
	bill := seedBill(t, db, tenant.ID, false)

	router := gin.New()
	router.GET("/bills/:id/receipt", handleGetReceipt(db, nil))

	w := perform(router, http.MethodGet, "/bills/"+bill.ID+"/receipt", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetReceiptReturnsPDF(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	unit := seedUnit(t, db)
	tenant := seedActiveTenant(t, db, unit.ID)
	bill := seedBill(t, db, tenant.ID, true)

	router := gin.New()
	router.GET("/bills/:id/receipt", handleGetReceipt(db, nil))

	w := perform(router, http.MethodGet, "/bills/"+bill.ID+"/receipt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "quittance-"+bill.ID+".pdf")
	assert.Equal(t, "%PDF", w.Body.String()[:4])
}

func TestGetReceiptMissingBill(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)

	router := gin.New()
	router.GET("/bills/:id/receipt", handleGetReceipt(db, nil))

	w := perform(router, http.MethodGet, "/bills/nope/receipt", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateTenantMarksUnitOccupied(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	unit := seedUnit(t, db)

	router := gin.New()
	router.POST("/tenants", handleCreateTenant(db))

	w := perform(router, http.MethodPost, "/tenants", CreateTenantRequest{
		FirstName:   "Luc",
		LastName:    "Bernard",
		MonthlyRent: 900,
		UnitID:      unit.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var updated models.Unit
	require.NoError(t, db.First(&updated, "id = ?", unit.ID).Error)
	assert.True(t, updated.IsOccupied)

	var count int64
	require.NoError(t, db.Model(&models.Tenant{}).
		Where("unit_id = ? AND is_active = ?", unit.ID, true).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateTenantUnknownUnit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)

	router := gin.New()
	router.POST("/tenants", handleCreateTenant(db))

	w := perform(router, http.MethodPost, "/tenants", CreateTenantRequest{
		FirstName:   "Luc",
		LastName:    "Bernard",
		MonthlyRent: 900,
		UnitID:      "nope",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMoveOutReleasesUnit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	unit := seedUnit(t, db)
	tenant := seedActiveTenant(t, db, unit.ID)

	router := gin.New()
	router.DELETE("/tenants/:id", handleMoveOutTenant(db))

	w := perform(router, http.MethodDelete, "/tenants/"+tenant.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var moved models.Tenant
	require.NoError(t, db.First(&moved, "id = ?", tenant.ID).Error)
	assert.False(t, moved.IsActive)

	var freed models.Unit
	require.NoError(t, db.First(&freed, "id = ?", unit.ID).Error)
	assert.False(t, freed.IsOccupied)
}

func TestMoveOutKeepsUnitWithRemainingTenant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	unit := seedUnit(t, db)
	leaving := seedActiveTenant(t, db, unit.ID)
	seedActiveTenant(t, db, unit.ID)

	router := gin.New()
	router.DELETE("/tenants/:id", handleMoveOutTenant(db))

	w := perform(router, http.MethodDelete, "/tenants/"+leaving.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var still models.Unit
	require.NoError(t, db.First(&still, "id = ?", unit.ID).Error)
	assert.True(t, still.IsOccupied)
}

func TestMoveOutPreservesBillingHistory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	unit := seedUnit(t, db)
	tenant := seedActiveTenant(t, db, unit.ID)
	seedBill(t, db, tenant.ID, true)

	router := gin.New()
	router.DELETE("/tenants/:id", handleMoveOutTenant(db))

	w := perform(router, http.MethodDelete, "/tenants/"+tenant.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var bills int64
	require.NoError(t, db.Model(&models.Bill{}).
		Where("tenant_id = ?", tenant.ID).Count(&bills).Error)
	assert.Equal(t, int64(1), bills)
}

func TestGetCurrentTenantPicksMostRecentActive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	unit := seedUnit(t, db)

	older := seedActiveTenant(t, db, unit.ID)
	require.NoError(t, db.Model(older).Updates(map[string]interface{}{
		"is_active":  false,
		"entry_date": time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC),
	}).Error)
	current := seedActiveTenant(t, db, unit.ID)

	router := gin.New()
	router.GET("/units/:id/current-tenant", handleGetCurrentTenant(db))

	w := perform(router, http.MethodGet, "/units/"+unit.ID+"/current-tenant", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data models.Tenant `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, current.ID, resp.Data.ID)
}
