package billing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

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
	require.NoError(t, db.AutoMigrate(&models.Unit{}, &models.Tenant{}, &models.Bill{}))
	return db
}

func seedTenant(t *testing.T, db *gorm.DB, rent, charge float64, entryDate time.Time) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{
		ID:            uuid.NewString(),
		FirstName:     "Jean",
		LastName:      "Dupont",
		MonthlyRent:   rent,
		MonthlyCharge: charge,
		UnitID:        uuid.NewString(),
		EntryDate:     entryDate,
		IsActive:      true,
	}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

func TestRunSkipsWhenNotMonthEnd(t *testing.T) {
	db := openTestDB(t)
	seedTenant(t, db, 900, 0, date(2025, time.January, 1))
	gen := NewGenerator(NewGormStore(db), nil)

	for _, day := range []int{1, 15, 29} {
		summary, err := gen.RunAt(context.Background(), date(2025, time.June, day))
		require.NoError(t, err)
		assert.Equal(t, Summary{}, summary)
	}

	var count int64
	require.NoError(t, db.Model(&models.Bill{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGenerateFullMonthAndRerunIdempotent(t *testing.T) {
	db := openTestDB(t)
	tenant := seedTenant(t, db, 1500, 100, date(2025, time.March, 12))
	gen := NewGenerator(NewGormStore(db), nil)

	runDate := date(2025, time.June, 30)
	summary, err := gen.RunAt(context.Background(), runDate)
	require.NoError(t, err)
	assert.Equal(t, Summary{Generated: 1}, summary)

	var bill models.Bill
	require.NoError(t, db.Where("tenant_id = ?", tenant.ID).First(&bill).Error)
	assert.Equal(t, 1600.0, bill.Amount)
	assert.Equal(t, 6, bill.Month)
	assert.Equal(t, 2025, bill.Year)
	assert.False(t, bill.IsPaid)
	assert.Equal(t, time.July, bill.DueDate.Month())
	assert.Equal(t, 5, bill.DueDate.Day())

	// Second run on the same date must not duplicate.
	summary, err = gen.RunAt(context.Background(), runDate)
	require.NoError(t, err)
	assert.Equal(t, Summary{Skipped: 1}, summary)

	var count int64
	require.NoError(t, db.Model(&models.Bill{}).Where("tenant_id = ?", tenant.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestProrationMidMonth(t *testing.T) {
	db := openTestDB(t)
	tenant := seedTenant(t, db, 900, 0, date(2025, time.June, 15))
	gen := NewGenerator(NewGormStore(db), nil)

	summary, err := gen.RunAt(context.Background(), date(2025, time.June, 30))
	require.NoError(t, err)
	assert.Equal(t, Summary{Generated: 1}, summary)

	var bill models.Bill
	require.NoError(t, db.Where("tenant_id = ?", tenant.ID).First(&bill).Error)
	// 16 of 30 days occupied, entry day included.
	assert.InDelta(t, 480.0, bill.Amount, 1e-9)
}

func TestNoProrationOnFirstOfMonth(t *testing.T) {
	tenant := &models.Tenant{MonthlyRent: 800, MonthlyCharge: 50, EntryDate: date(2025, time.June, 1)}
	assert.Equal(t, 850.0, ProratedAmount(tenant, date(2025, time.June, 30)))
}

func TestNoProrationForPriorMonthEntry(t *testing.T) {
	tenant := &models.Tenant{MonthlyRent: 800, MonthlyCharge: 50, EntryDate: date(2025, time.May, 20)}
	assert.Equal(t, 850.0, ProratedAmount(tenant, date(2025, time.June, 30)))
}

func TestLeapYearProration(t *testing.T) {
	tenant := &models.Tenant{MonthlyRent: 290, MonthlyCharge: 0, EntryDate: date(2024, time.February, 20)}
	// 2024 February has 29 days; 10 remain from the 20th inclusive.
	amount := ProratedAmount(tenant, date(2024, time.February, 29))
	assert.InDelta(t, 290.0/29.0*10.0, amount, 1e-9)
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(2025, time.January))
	assert.Equal(t, 28, DaysInMonth(2025, time.February))
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 30, DaysInMonth(2025, time.June))
}

// flakyStore fails lookups for a single tenant to prove batch isolation.
type flakyStore struct {
	Store
	failTenantID string
}

func (s *flakyStore) FindBill(ctx context.Context, tenantID string, month, year int) (*models.Bill, error) {
	if tenantID == s.failTenantID {
		return nil, errors.New("boom")
	}
	return s.Store.FindBill(ctx, tenantID, month, year)
}

func TestPerTenantFailureDoesNotAbortBatch(t *testing.T) {
	db := openTestDB(t)
	bad := seedTenant(t, db, 700, 0, date(2025, time.January, 1))
	good := seedTenant(t, db, 900, 0, date(2025, time.January, 1))

	store := &flakyStore{Store: NewGormStore(db), failTenantID: bad.ID}
	gen := NewGenerator(store, nil)

	summary, err := gen.RunAt(context.Background(), date(2025, time.June, 30))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Generated)

	var count int64
	require.NoError(t, db.Model(&models.Bill{}).Where("tenant_id = ?", good.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

// racyStore simulates losing the insert race after a clean lookup.
type racyStore struct {
	Store
}

func (s *racyStore) InsertBill(ctx context.Context, bill *models.Bill) error {
	return ErrDuplicateBill
}

func TestLostInsertRaceCountsAsSkip(t *testing.T) {
	db := openTestDB(t)
	seedTenant(t, db, 900, 0, date(2025, time.January, 1))

	gen := NewGenerator(&racyStore{Store: NewGormStore(db)}, nil)
	summary, err := gen.RunAt(context.Background(), date(2025, time.June, 30))
	require.NoError(t, err)
	assert.Equal(t, Summary{Skipped: 1}, summary)
}

func TestInsertBillDuplicateKey(t *testing.T) {
	db := openTestDB(t)
	tenant := seedTenant(t, db, 900, 0, date(2025, time.January, 1))
	store := NewGormStore(db)

	bill := &models.Bill{
		ID:       uuid.NewString(),
		TenantID: tenant.ID,
		Amount:   900,
		Month:    6,
		Year:     2025,
		DueDate:  date(2025, time.July, 5),
	}
	require.NoError(t, store.InsertBill(context.Background(), bill))

	dup := *bill
	dup.ID = uuid.NewString()
	err := store.InsertBill(context.Background(), &dup)
	assert.ErrorIs(t, err, ErrDuplicateBill)
}

func TestZeroActiveTenantsIsValid(t *testing.T) {
	db := openTestDB(t)
	gen := NewGenerator(NewGormStore(db), nil)

	summary, err := gen.RunAt(context.Background(), date(2025, time.June, 30))
	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)
}
