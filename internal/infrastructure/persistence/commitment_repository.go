package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCommitmentRepository implements CommitmentRepository using GORM
type GormCommitmentRepository struct {
	db *gorm.DB
}

// NewGormCommitmentRepository creates a new GormCommitmentRepository
func NewGormCommitmentRepository(db *gorm.DB) *GormCommitmentRepository {
	return &GormCommitmentRepository{db: db}
}

// FindByID finds a commitment by ID
func (r *GormCommitmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Commitment, error) {
	var c inventory.Commitment
	if err := firstOrNotFound(r.db.WithContext(ctx).Where("id = ?", id), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByIDForUpdate finds and locks a commitment
func (r *GormCommitmentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Commitment, error) {
	var c inventory.Commitment
	query := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id)
	if err := firstOrNotFound(query, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindAll lists commitments with optional item and fulfilment filters
func (r *GormCommitmentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Commitment, int64, error) {
	query := r.db.WithContext(ctx).Model(&inventory.Commitment{})
	if v, ok := stringFilter(filter, "stock_item_id"); ok {
		query = query.Where("stock_item_id = ?", v)
	}
	if v, ok := filter.Filters["is_fulfilled"].(bool); ok {
		query = query.Where("is_fulfilled = ?", v)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("customer_name LIKE ? OR customer_order_number LIKE ?", like, like)
	}
	return findPage[inventory.Commitment](query, filter, CommitmentSortFields, "created_at")
}

// Save creates or updates a commitment
func (r *GormCommitmentRepository) Save(ctx context.Context, c *inventory.Commitment) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// SumOpen sums unfulfilled commitment quantities for an item
func (r *GormCommitmentRepository) SumOpen(ctx context.Context, stockItemID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&inventory.Commitment{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("stock_item_id = ? AND is_fulfilled = ?", stockItemID, false).
		Scan(&sum).Error
	return sum, err
}

var _ inventory.CommitmentRepository = (*GormCommitmentRepository)(nil)
