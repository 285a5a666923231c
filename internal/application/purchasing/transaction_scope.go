package purchasing

import (
	"context"

	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/purchasing"
)

// TransactionalRepositories extends the ledger repositories with purchase
// orders so that a receipt updates both in one transaction.
type TransactionalRepositories interface {
	appinv.TransactionalRepositories
	PurchaseOrders() purchasing.PurchaseOrderRepository
}

// TransactionScope runs purchasing work atomically
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
