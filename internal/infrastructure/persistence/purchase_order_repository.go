package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/purchasing"
	"github.com/stockledger/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

func preloadOrderItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at ASC")
	})
}

// FindByID finds an order with its lines
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.PurchaseOrder, error) {
	var po purchasing.PurchaseOrder
	if err := firstOrNotFound(preloadOrderItems(r.db.WithContext(ctx)).Where("id = ?", id), &po); err != nil {
		return nil, err
	}
	return &po, nil
}

// FindByIDForUpdate finds and locks an order with its lines
func (r *GormPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*purchasing.PurchaseOrder, error) {
	var po purchasing.PurchaseOrder
	query := preloadOrderItems(r.db.WithContext(ctx)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id)
	if err := firstOrNotFound(query, &po); err != nil {
		return nil, err
	}
	return &po, nil
}

// FindAll lists orders without their lines
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]purchasing.PurchaseOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&purchasing.PurchaseOrder{})
	if v, ok := stringFilter(filter, "status"); ok {
		query = query.Where("status = ?", v)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("reference LIKE ? OR supplier_name LIKE ?", like, like)
	}
	return findPage[purchasing.PurchaseOrder](query, filter, AuditSortFields, "created_at")
}

// CountForYear counts orders created in a calendar year
func (r *GormPurchaseOrderRepository) CountForYear(ctx context.Context, year int) (int64, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	var count int64
	err := r.db.WithContext(ctx).Model(&purchasing.PurchaseOrder{}).
		Where("created_at >= ? AND created_at < ?", from, from.AddDate(1, 0, 0)).
		Count(&count).Error
	return count, err
}

// Save writes the order row and then each of its lines
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, po *purchasing.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(po).Error; err != nil {
			return err
		}
		for i := range po.Items {
			if err := tx.Save(&po.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

var _ purchasing.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
