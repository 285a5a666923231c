package inventory

import (
	"context"

	"github.com/stockledger/backend/internal/domain/inventory"
)

// TransactionScope runs ledger work atomically. Every repository handed to fn
// shares one database transaction: either every write lands or none does.
type TransactionScope interface {
	// Execute runs fn within a transaction. An error from fn rolls it back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to the ledger repositories.
//
// Aggregate boundaries:
//   - Items: StockItem is the root; its LocationEntries are saved with it.
//   - History: append only, written by the ledger save path.
//   - Commitments and Reservations hold stock against an item but are stored
//     separately so their sums can be computed on read.
//   - Audits: StockAudit is the root; its AuditItems are saved with it.
type TransactionalRepositories interface {
	Stores() inventory.StoreRepository
	Items() inventory.StockItemRepository
	History() inventory.HistoryRepository
	Commitments() inventory.CommitmentRepository
	Reservations() inventory.ReservationRepository
	Transfers() inventory.TransferRepository
	Audits() inventory.StockAuditRepository
}
