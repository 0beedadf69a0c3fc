package billing

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pverdier/go-gestion-locative/shared/models"
)

// ErrDuplicateBill is returned by InsertBill when a bill for the same
// tenant and period already exists. The generator treats it as a skip.
var ErrDuplicateBill = errors.New("bill already exists for tenant and period")

// Store is the persistence gateway the generator depends on.
type Store interface {
	ListActiveTenants(ctx context.Context) ([]models.Tenant, error)
	FindBill(ctx context.Context, tenantID string, month, year int) (*models.Bill, error)
	InsertBill(ctx context.Context, bill *models.Bill) error
}

// GormStore implements Store on a GORM database handle.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by the given database.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ListActiveTenants returns every tenant whose tenancy is still running.
func (s *GormStore) ListActiveTenants(ctx context.Context) ([]models.Tenant, error) {
	var tenants []models.Tenant
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Find(&tenants).Error; err != nil {
		return nil, fmt.Errorf("failed to list active tenants: %w", err)
	}
	return tenants, nil
}

// FindBill looks up an existing bill for a tenant and billing period.
// A missing bill is not an error: it returns (nil, nil).
func (s *GormStore) FindBill(ctx context.Context, tenantID string, month, year int) (*models.Bill, error) {
	var bill models.Bill
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND month = ? AND year = ?", tenantID, month, year).
		First(&bill).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up bill for tenant %s: %w", tenantID, err)
	}
	return &bill, nil
}

// InsertBill persists a freshly generated bill. The unique index on
// (tenant_id, month, year) turns a concurrent double-insert into
// ErrDuplicateBill instead of a duplicate row.
func (s *GormStore) InsertBill(ctx context.Context, bill *models.Bill) error {
	err := s.db.WithContext(ctx).Create(bill).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateBill
	}
	if err != nil {
		return fmt.Errorf("failed to insert bill for tenant %s: %w", bill.TenantID, err)
	}
	return nil
}
