package purchasing

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
)

// PurchaseOrderRepository defines persistence for purchase orders and their lines
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	// FindByIDForUpdate loads and row-locks an order with its lines
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	// FindAll lists orders without lines; Filters supports "status"
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, int64, error)
	// CountForYear counts orders created in a calendar year
	CountForYear(ctx context.Context, year int) (int64, error)
	Save(ctx context.Context, po *PurchaseOrder) error
}
