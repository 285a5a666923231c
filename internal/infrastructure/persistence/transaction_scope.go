package persistence

import (
	"context"

	appinv "github.com/stockledger/backend/internal/application/inventory"
	apppurchasing "github.com/stockledger/backend/internal/application/purchasing"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/purchasing"
	"gorm.io/gorm"
)

// GormTransactionScope implements the ledger TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction. An error from fn rolls it
// back; otherwise it commits.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// GormPurchasingTransactionScope is GormTransactionScope with purchase orders
// added to the repository set.
type GormPurchasingTransactionScope struct {
	db *gorm.DB
}

// NewGormPurchasingTransactionScope creates a new GormPurchasingTransactionScope.
func NewGormPurchasingTransactionScope(db *gorm.DB) *GormPurchasingTransactionScope {
	return &GormPurchasingTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
func (s *GormPurchasingTransactionScope) Execute(ctx context.Context, fn func(repos apppurchasing.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// Repositories hands out repositories bound to one *gorm.DB, which is either
// the pool or an open transaction.
type Repositories struct {
	db *gorm.DB
}

// NewRepositories creates repositories over db
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{db: db}
}

// Stores returns the store repository
func (r *Repositories) Stores() inventory.StoreRepository {
	return NewGormStoreRepository(r.db)
}

// Items returns the stock item repository
func (r *Repositories) Items() inventory.StockItemRepository {
	return NewGormStockItemRepository(r.db)
}

// History returns the history journal
func (r *Repositories) History() inventory.HistoryRepository {
	return NewGormHistoryRepository(r.db)
}

// Commitments returns the commitment repository
func (r *Repositories) Commitments() inventory.CommitmentRepository {
	return NewGormCommitmentRepository(r.db)
}

// Reservations returns the reservation repository
func (r *Repositories) Reservations() inventory.ReservationRepository {
	return NewGormReservationRepository(r.db)
}

// Transfers returns the transfer repository
func (r *Repositories) Transfers() inventory.TransferRepository {
	return NewGormTransferRepository(r.db)
}

// Audits returns the stock audit repository
func (r *Repositories) Audits() inventory.StockAuditRepository {
	return NewGormStockAuditRepository(r.db)
}

// PurchaseOrders returns the purchase order repository
func (r *Repositories) PurchaseOrders() purchasing.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.db)
}

var (
	_ appinv.TransactionScope                 = (*GormTransactionScope)(nil)
	_ apppurchasing.TransactionScope          = (*GormPurchasingTransactionScope)(nil)
	_ apppurchasing.TransactionalRepositories = (*Repositories)(nil)
)
