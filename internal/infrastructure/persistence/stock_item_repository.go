package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// availableExpr is quantity minus open commitments and live reservations
const availableExpr = `stock_items.quantity
	- COALESCE((SELECT SUM(c.quantity) FROM commitments c WHERE c.stock_item_id = stock_items.id AND c.is_fulfilled = ?), 0)
	- COALESCE((SELECT SUM(r.quantity) FROM reservations r WHERE r.stock_item_id = stock_items.id AND r.status = ? AND r.expires_at > ?), 0)`

// GormStockItemRepository implements StockItemRepository using GORM
type GormStockItemRepository struct {
	db *gorm.DB
}

// NewGormStockItemRepository creates a new GormStockItemRepository
func NewGormStockItemRepository(db *gorm.DB) *GormStockItemRepository {
	return &GormStockItemRepository{db: db}
}

func preloadLocations(db *gorm.DB) *gorm.DB {
	return db.Preload("Locations", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at ASC")
	})
}

func (r *GormStockItemRepository) first(query *gorm.DB) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := firstOrNotFound(preloadLocations(query), &item); err != nil {
		return nil, err
	}
	item.MarkPersisted()
	return &item, nil
}

// FindByID finds an item with its locations
func (r *GormStockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockItem, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByIDForUpdate finds an item and locks its row (SELECT ... FOR UPDATE)
func (r *GormStockItemRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.StockItem, error) {
	return r.first(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

// FindByNameForUpdate finds and locks an item by exact name
func (r *GormStockItemRepository) FindByNameForUpdate(ctx context.Context, name string) (*inventory.StockItem, error) {
	return r.first(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_name = ?", name))
}

// FindBySKU finds an item by SKU
func (r *GormStockItemRepository) FindBySKU(ctx context.Context, sku string) (*inventory.StockItem, error) {
	return r.first(r.db.WithContext(ctx).Where("sku = ?", sku))
}

// FindAll lists items with optional category, condition and search filters
func (r *GormStockItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockItem, int64, error) {
	return r.list(r.applyFilter(r.db.WithContext(ctx).Model(&inventory.StockItem{}), filter), filter)
}

// FindLowStock lists items whose availability at now is at or below re_order
func (r *GormStockItemRepository) FindLowStock(ctx context.Context, now time.Time, filter shared.Filter) ([]inventory.StockItem, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.StockItem{}), filter).
		Where("("+availableExpr+") <= stock_items.re_order", false, inventory.ReservationActive, now.UTC())
	return r.list(query, filter)
}

// FindSplitItems lists every item with at least one location entry
func (r *GormStockItemRepository) FindSplitItems(ctx context.Context) ([]inventory.StockItem, error) {
	var items []inventory.StockItem
	err := preloadLocations(r.db.WithContext(ctx)).
		Where("EXISTS (SELECT 1 FROM location_entries l WHERE l.stock_item_id = stock_items.id)").
		Order("item_name ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].MarkPersisted()
	}
	return items, nil
}

// ConditionSummary groups items by condition
func (r *GormStockItemRepository) ConditionSummary(ctx context.Context) ([]inventory.ConditionSummary, error) {
	var rows []inventory.ConditionSummary
	err := r.db.WithContext(ctx).Model(&inventory.StockItem{}).
		Select("condition, COUNT(*) AS count, COALESCE(SUM(quantity), 0) AS total_quantity").
		Group("condition").
		Order("condition ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindLocation finds a single location entry
func (r *GormStockItemRepository) FindLocation(ctx context.Context, id uuid.UUID) (*inventory.LocationEntry, error) {
	var loc inventory.LocationEntry
	if err := firstOrNotFound(r.db.WithContext(ctx).Where("id = ?", id), &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// SaveLocation updates a single location entry
func (r *GormStockItemRepository) SaveLocation(ctx context.Context, loc *inventory.LocationEntry) error {
	return r.db.WithContext(ctx).Save(loc).Error
}

// Save writes the item row and then each of its location entries
func (r *GormStockItemRepository) Save(ctx context.Context, item *inventory.StockItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(item).Error; err != nil {
			return err
		}
		for i := range item.Locations {
			if err := tx.Save(&item.Locations[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the item and its location entries
func (r *GormStockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("stock_item_id = ?", id).Delete(&inventory.LocationEntry{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&inventory.StockItem{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormStockItemRepository) list(query *gorm.DB, filter shared.Filter) ([]inventory.StockItem, int64, error) {
	items, total, err := findPage[inventory.StockItem](query, filter, StockItemSortFields, "item_name", preloadLocations)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		items[i].MarkPersisted()
	}
	return items, total, nil
}

func (r *GormStockItemRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("stock_items.item_name LIKE ? OR stock_items.sku LIKE ?", like, like)
	}
	if v, ok := stringFilter(filter, "category"); ok {
		query = query.Where("stock_items.category = ?", v)
	}
	if v, ok := stringFilter(filter, "condition"); ok {
		query = query.Where("stock_items.condition = ?", v)
	}
	if v, ok := stringFilter(filter, "store_id"); ok {
		query = query.Where("stock_items.home_store_id = ? OR EXISTS (SELECT 1 FROM location_entries l WHERE l.stock_item_id = stock_items.id AND l.store_id = ?)", v, v)
	}
	return query
}

var _ inventory.StockItemRepository = (*GormStockItemRepository)(nil)
