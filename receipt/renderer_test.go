package receipt

import (
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
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Property{}, &models.Unit{}, &models.Tenant{}, &models.Bill{},
	))
	return db
}

// seedChain inserts a full owner -> property -> unit -> tenant -> bill chain.
func seedChain(t *testing.T, db *gorm.DB, paid bool) *models.Bill {
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
		ID:      uuid.NewString(),
		OwnerID: owner.ID,
		Address: models.Address{
			Street:  "12 rue de la Paix",
			City:    "Lyon",
			ZipCode: "69001",
			Country: "France",
		},
		PropertyType: models.PropertyTypeApartment,
	}
	require.NoError(t, db.Create(property).Error)

	unit := &models.Unit{ID: uuid.NewString(), PropertyID: property.ID, UnitNumber: "2B", IsOccupied: true}
	require.NoError(t, db.Create(unit).Error)

	tenant := &models.Tenant{
		ID:            uuid.NewString(),
		Title:         "madame",
		FirstName:     "Claire",
		LastName:      "Moreau",
		MonthlyRent:   1500,
		MonthlyCharge: 100,
		UnitID:        unit.ID,
		EntryDate:     time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
	}
	require.NoError(t, db.Create(tenant).Error)

	bill := &models.Bill{
		ID:       uuid.NewString(),
		TenantID: tenant.ID,
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

func TestLoadDataResolvesFullChain(t *testing.T) {
	db := openTestDB(t)
	bill := seedChain(t, db, true)

	data, err := LoadData(db, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.ID, data.Bill.ID)
	assert.Equal(t, "Moreau", data.Tenant.LastName)
	assert.Equal(t, "Lyon", data.Property.Address.City)
	assert.Equal(t, "Verdier", data.Owner.LastName)
}

func TestLoadDataMissingBill(t *testing.T) {
	db := openTestDB(t)
	_, err := LoadData(db, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadDataBrokenChain(t *testing.T) {
	db := openTestDB(t)
	bill := seedChain(t, db, true)

	// Sever the tenant -> unit link.
	require.NoError(t, db.Model(&models.Tenant{}).Where("id = ?", bill.TenantID).
		Update("unit_id", "missing").Error)

	_, err := LoadData(db, bill.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadDataUnpaidBill(t *testing.T) {
	db := openTestDB(t)
	bill := seedChain(t, db, false)

	_, err := LoadData(db, bill.ID)
	assert.ErrorIs(t, err, ErrUnpaidBill)
}

func TestRenderProducesPDF(t *testing.T) {
	db := openTestDB(t)
	bill := seedChain(t, db, true)

	data, err := LoadData(db, bill.ID)
	require.NoError(t, err)

	pdf, err := Render(data, time.Date(2025, time.July, 3, 14, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, len(pdf) > 1000)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "quittance-abc123.pdf", Filename("abc123"))
}
