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

// GormStockAuditRepository implements StockAuditRepository using GORM
type GormStockAuditRepository struct {
	db *gorm.DB
}

// NewGormStockAuditRepository creates a new GormStockAuditRepository
func NewGormStockAuditRepository(db *gorm.DB) *GormStockAuditRepository {
	return &GormStockAuditRepository{db: db}
}

func preloadAuditItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at ASC")
	})
}

// FindByID finds an audit with its lines
func (r *GormStockAuditRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockAudit, error) {
	var a inventory.StockAudit
	if err := firstOrNotFound(preloadAuditItems(r.db.WithContext(ctx)).Where("id = ?", id), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByIDForUpdate finds and locks an audit with its lines
func (r *GormStockAuditRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.StockAudit, error) {
	var a inventory.StockAudit
	query := preloadAuditItems(r.db.WithContext(ctx)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id)
	if err := firstOrNotFound(query, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// FindAll lists audits without their lines
func (r *GormStockAuditRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockAudit, int64, error) {
	query := r.db.WithContext(ctx).Model(&inventory.StockAudit{})
	if v, ok := stringFilter(filter, "status"); ok {
		query = query.Where("status = ?", v)
	}
	if v, ok := stringFilter(filter, "audit_type"); ok {
		query = query.Where("audit_type = ?", v)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR reference LIKE ?", like, like)
	}
	return findPage[inventory.StockAudit](query, filter, AuditSortFields, "created_at")
}

// FindItems pages through the lines of an audit; "status" filters by line status
func (r *GormStockAuditRepository) FindItems(ctx context.Context, auditID uuid.UUID, filter shared.Filter) ([]inventory.AuditItem, int64, error) {
	query := r.db.WithContext(ctx).Model(&inventory.AuditItem{}).Where("audit_id = ?", auditID)
	if v, ok := stringFilter(filter, "status"); ok {
		query = query.Where("status = ?", v)
	}
	if v, ok := filter.Filters["has_variance"].(bool); ok && v {
		query = query.Where("variance_quantity <> 0")
	}
	return findPage[inventory.AuditItem](query, filter, map[string]bool{
		"created_at":        true,
		"item_name":         true,
		"variance_quantity": true,
	}, "created_at")
}

// CountForYear counts audits created in a calendar year
func (r *GormStockAuditRepository) CountForYear(ctx context.Context, year int) (int64, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	var count int64
	err := r.db.WithContext(ctx).Model(&inventory.StockAudit{}).
		Where("created_at >= ? AND created_at < ?", from, from.AddDate(1, 0, 0)).
		Count(&count).Error
	return count, err
}

// CountOpenLines counts an item's lines on audits that can still change the ledger
func (r *GormStockAuditRepository) CountOpenLines(ctx context.Context, stockItemID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&inventory.AuditItem{}).
		Joins("JOIN stock_audits ON stock_audits.id = audit_items.audit_id").
		Where("audit_items.stock_item_id = ?", stockItemID).
		Where("stock_audits.status NOT IN ?", []string{string(inventory.AuditApproved), string(inventory.AuditCancelled)}).
		Count(&count).Error
	return count, err
}

// Save writes the audit row and then each of its lines
func (r *GormStockAuditRepository) Save(ctx context.Context, audit *inventory.StockAudit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(audit).Error; err != nil {
			return err
		}
		for i := range audit.Items {
			if err := tx.Save(&audit.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

var _ inventory.StockAuditRepository = (*GormStockAuditRepository)(nil)
