package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTransferRepository implements TransferRepository using GORM
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// FindByID finds a transfer by ID
func (r *GormTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Transfer, error) {
	var t inventory.Transfer
	if err := firstOrNotFound(r.db.WithContext(ctx).Where("id = ?", id), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// FindByIDForUpdate finds and locks a transfer
func (r *GormTransferRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Transfer, error) {
	var t inventory.Transfer
	query := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id)
	if err := firstOrNotFound(query, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// FindAll lists transfers; "store_id" matches either end of the transfer
func (r *GormTransferRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Transfer, int64, error) {
	query := r.db.WithContext(ctx).Model(&inventory.Transfer{})
	if v, ok := stringFilter(filter, "status"); ok {
		query = query.Where("status = ?", v)
	}
	if v, ok := stringFilter(filter, "transfer_type"); ok {
		query = query.Where("transfer_type = ?", v)
	}
	if v, ok := stringFilter(filter, "stock_item_id"); ok {
		query = query.Where("stock_item_id = ?", v)
	}
	if v, ok := stringFilter(filter, "store_id"); ok {
		query = query.Where("from_store_id = ? OR to_store_id = ?", v, v)
	}
	return findPage[inventory.Transfer](query, filter, TransferSortFields, "created_at")
}

// Save creates or updates a transfer
func (r *GormTransferRepository) Save(ctx context.Context, t *inventory.Transfer) error {
	return r.db.WithContext(ctx).Save(t).Error
}

// CountOpen counts an item's transfers that are still under way
func (r *GormTransferRepository) CountOpen(ctx context.Context, stockItemID uuid.UUID) (int64, error) {
	terminal := []string{
		string(inventory.TransferCompleted),
		string(inventory.TransferCollected),
		string(inventory.TransferCancelled),
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&inventory.Transfer{}).
		Where("stock_item_id = ? AND status NOT IN ?", stockItemID, terminal).
		Count(&count).Error
	return count, err
}

var _ inventory.TransferRepository = (*GormTransferRepository)(nil)
