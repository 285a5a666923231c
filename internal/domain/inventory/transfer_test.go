package inventory

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transferFixture struct {
	item *StockItem
	a, b uuid.UUID
}

func newTransferFixture(t *testing.T, atA int64) transferFixture {
	t.Helper()
	item, a := newStockedItem(t, atA, 0)
	return transferFixture{item: item, a: a, b: uuid.New()}
}

func (f transferFixture) create(t *testing.T, typ TransferType, qty int64) *Transfer {
	t.Helper()
	tr, deltas, err := NewTransfer(NewTransferInput{
		StockItemID: f.item.ID,
		FromStoreID: f.a,
		ToStoreID:   f.b,
		Quantity:    qty,
		Type:        typ,
		CreatedBy:   "jo",
	}, testNow)
	require.NoError(t, err)
	require.NoError(t, f.item.ApplyDeltas(deltas, testNow))
	return tr
}

func TestTransfer_RestockScenario(t *testing.T) {
	f := newTransferFixture(t, 5)
	tr := f.create(t, TransferRestock, 5)
	assert.Equal(t, int64(5), f.item.LocationQuantity(f.a))
	assert.Equal(t, TransferPending, tr.Status)

	require.NoError(t, tr.Approve("mo", testNow))
	assert.Equal(t, TransferInTransit, tr.Status)

	deltas, err := tr.Complete("mo", testNow)
	require.NoError(t, err)
	require.NoError(t, f.item.ApplyDeltas(deltas, testNow))

	assert.Equal(t, TransferCompleted, tr.Status)
	assert.Equal(t, int64(0), f.item.LocationQuantity(f.a))
	assert.Equal(t, int64(5), f.item.LocationQuantity(f.b))
	assert.NoError(t, f.item.CheckConsistency())
}

func TestTransfer_CustomerCollectionScenario(t *testing.T) {
	f := newTransferFixture(t, 10)
	tr := f.create(t, TransferCustomerCollection, 2)
	assert.Equal(t, int64(8), f.item.LocationQuantity(f.a))

	deltas, err := tr.Complete("mo", testNow)
	require.NoError(t, err)
	require.NoError(t, f.item.ApplyDeltas(deltas, testNow))
	assert.Equal(t, TransferAwaitingCollection, tr.Status)
	assert.Equal(t, int64(2), f.item.LocationQuantity(f.b))

	deltas, err = tr.MarkCollected("mo", testNow)
	require.NoError(t, err)
	require.NoError(t, f.item.ApplyDeltas(deltas, testNow))
	assert.Equal(t, TransferCollected, tr.Status)
	assert.Equal(t, int64(0), f.item.LocationQuantity(f.b))
	assert.Equal(t, int64(8), f.item.TotalOnHand())
}

func TestTransfer_General(t *testing.T) {
	f := newTransferFixture(t, 10)
	tr := f.create(t, TransferGeneral, 4)
	assert.Equal(t, int64(6), f.item.LocationQuantity(f.a))

	deltas, err := tr.Complete("mo", testNow)
	require.NoError(t, err)
	require.NoError(t, f.item.ApplyDeltas(deltas, testNow))
	assert.Equal(t, TransferCompleted, tr.Status)
	assert.Equal(t, int64(4), f.item.LocationQuantity(f.b))
	assert.Equal(t, int64(10), f.item.TotalOnHand())
}

func TestTransfer_Cancel(t *testing.T) {
	t.Run("restock cancel moves nothing", func(t *testing.T) {
		f := newTransferFixture(t, 5)
		tr := f.create(t, TransferRestock, 3)
		require.NoError(t, tr.Approve("mo", testNow))
		deltas, err := tr.Cancel("mo", testNow)
		require.NoError(t, err)
		assert.Empty(t, deltas)
		assert.Equal(t, TransferCancelled, tr.Status)
	})

	t.Run("general cancel restores the source", func(t *testing.T) {
		f := newTransferFixture(t, 5)
		tr := f.create(t, TransferGeneral, 3)
		deltas, err := tr.Cancel("mo", testNow)
		require.NoError(t, err)
		require.NoError(t, f.item.ApplyDeltas(deltas, testNow))
		assert.Equal(t, int64(5), f.item.LocationQuantity(f.a))
	})

	t.Run("collection cancel while awaiting pulls stock back from the destination", func(t *testing.T) {
		f := newTransferFixture(t, 5)
		tr := f.create(t, TransferCustomerCollection, 2)
		deltas, err := tr.Complete("mo", testNow)
		require.NoError(t, err)
		require.NoError(t, f.item.ApplyDeltas(deltas, testNow))

		deltas, err = tr.Cancel("mo", testNow)
		require.NoError(t, err)
		require.NoError(t, f.item.ApplyDeltas(deltas, testNow))
		assert.Equal(t, int64(5), f.item.LocationQuantity(f.a))
		assert.Equal(t, int64(0), f.item.LocationQuantity(f.b))
	})

	t.Run("finished transfers cannot be cancelled", func(t *testing.T) {
		f := newTransferFixture(t, 5)
		tr := f.create(t, TransferGeneral, 1)
		_, err := tr.Complete("mo", testNow)
		require.NoError(t, err)
		_, err = tr.Cancel("mo", testNow)
		assert.True(t, errors.Is(err, shared.ErrIllegalTransition))
	})
}

func TestTransfer_IllegalTransitions(t *testing.T) {
	f := newTransferFixture(t, 5)
	tr := f.create(t, TransferGeneral, 1)
	_, err := tr.MarkCollected("mo", testNow)
	var illegal *shared.IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, "pending", illegal.From)

	_, err = tr.Cancel("mo", testNow)
	require.NoError(t, err)
	_, err = tr.Complete("mo", testNow)
	assert.True(t, errors.Is(err, shared.ErrIllegalTransition))
	assert.True(t, errors.Is(tr.Approve("mo", testNow), shared.ErrIllegalTransition))
}

func TestNewTransfer_Validation(t *testing.T) {
	store := uuid.New()
	_, _, err := NewTransfer(NewTransferInput{FromStoreID: store, ToStoreID: store, Quantity: 1}, testNow)
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, _, err = NewTransfer(NewTransferInput{FromStoreID: store, ToStoreID: uuid.New(), Quantity: 0}, testNow)
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, _, err = NewTransfer(NewTransferInput{FromStoreID: store, ToStoreID: uuid.New(), Quantity: 1, Type: "teleport"}, testNow)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestStockItem_ApplyDeltasIsAllOrNothing(t *testing.T) {
	f := newTransferFixture(t, 2)
	err := f.item.ApplyDeltas([]LocationDelta{{StoreID: f.b, Delta: 5}, {StoreID: f.a, Delta: -3}}, testNow)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	assert.Equal(t, int64(2), f.item.LocationQuantity(f.a))
	assert.Equal(t, int64(0), f.item.LocationQuantity(f.b))
}
