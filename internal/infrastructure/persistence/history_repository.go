package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormHistoryRepository implements the append-only HistoryRepository
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Append inserts entries. Existing entries are never touched.
func (r *GormHistoryRepository) Append(ctx context.Context, entries ...*inventory.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

// FindAll lists entries newest first
func (r *GormHistoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.HistoryEntry, int64, error) {
	return r.list(r.db.WithContext(ctx).Model(&inventory.HistoryEntry{}), filter)
}

// FindByStockItem lists the entries of one item newest first
func (r *GormHistoryRepository) FindByStockItem(ctx context.Context, stockItemID uuid.UUID, filter shared.Filter) ([]inventory.HistoryEntry, int64, error) {
	return r.list(r.db.WithContext(ctx).Model(&inventory.HistoryEntry{}).Where("stock_item_id = ?", stockItemID), filter)
}

func (r *GormHistoryRepository) list(query *gorm.DB, filter shared.Filter) ([]inventory.HistoryEntry, int64, error) {
	if v, ok := stringFilter(filter, "kind"); ok {
		query = query.Where("kind = ?", v)
	}
	if v, ok := stringFilter(filter, "actor"); ok {
		query = query.Where("actor = ?", v)
	}
	if v, ok := stringFilter(filter, "store_id"); ok {
		query = query.Where("store_id = ?", v)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("item_name LIKE ? OR sku LIKE ?", like, like)
	}
	return findPage[inventory.HistoryEntry](query, filter, HistorySortFields, "timestamp")
}

var _ inventory.HistoryRepository = (*GormHistoryRepository)(nil)
