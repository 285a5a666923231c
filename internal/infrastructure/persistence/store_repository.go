package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormStoreRepository implements StoreRepository using GORM
type GormStoreRepository struct {
	db *gorm.DB
}

// NewGormStoreRepository creates a new GormStoreRepository
func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// FindByID finds a store by ID
func (r *GormStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Store, error) {
	var store inventory.Store
	if err := firstOrNotFound(r.db.WithContext(ctx).Where("id = ?", id), &store); err != nil {
		return nil, err
	}
	return &store, nil
}

// FindByCode finds a store by its upper-cased code
func (r *GormStoreRepository) FindByCode(ctx context.Context, code string) (*inventory.Store, error) {
	var store inventory.Store
	if err := firstOrNotFound(r.db.WithContext(ctx).Where("code = ?", code), &store); err != nil {
		return nil, err
	}
	return &store, nil
}

// FindAll lists stores; Filters supports "designation" and "is_active"
func (r *GormStoreRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Store, int64, error) {
	query := r.db.WithContext(ctx).Model(&inventory.Store{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR code LIKE ?", like, like)
	}
	if v, ok := stringFilter(filter, "designation"); ok {
		query = query.Where("designation = ?", v)
	}
	if v, ok := filter.Filters["is_active"].(bool); ok {
		query = query.Where("is_active = ?", v)
	}
	return findPage[inventory.Store](query, filter, StoreSortFields, "name")
}

// Save creates or updates a store
func (r *GormStoreRepository) Save(ctx context.Context, store *inventory.Store) error {
	return r.db.WithContext(ctx).Save(store).Error
}

var _ inventory.StoreRepository = (*GormStoreRepository)(nil)
