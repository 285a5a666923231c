package purchasing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	apppurchasing "github.com/stockledger/backend/internal/application/purchasing"
	"github.com/stockledger/backend/internal/domain/purchasing"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/infrastructure/persistence"
	"github.com/stockledger/backend/internal/infrastructure/persistence/persistencetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	orders *apppurchasing.Service
	stock  *appinv.StockService
	clock  *shared.FixedClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := persistencetest.NewSQLiteDB(t)
	clock := shared.NewFixedClock(time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC))
	logger := zaptest.NewLogger(t)
	repos := persistence.NewRepositories(db)

	return &fixture{
		orders: apppurchasing.NewService(apppurchasing.ServiceDeps{
			Scope:  persistence.NewGormPurchasingTransactionScope(db),
			Repos:  repos,
			Clock:  clock,
			Logger: logger,
		}),
		stock: appinv.NewStockService(appinv.ServiceDeps{
			Scope:  persistence.NewGormTransactionScope(db),
			Repos:  repos,
			Clock:  clock,
			Logger: logger,
		}),
		clock: clock,
	}
}

func (f *fixture) placeOrder(t *testing.T, lines ...apppurchasing.OrderLineRequest) *apppurchasing.OrderResponse {
	t.Helper()
	po, err := f.orders.Create(context.Background(), apppurchasing.CreateOrderRequest{
		SupplierName: "Acme Appliances",
		Items:        lines,
		Actor:        "buyer",
	})
	require.NoError(t, err)
	return po
}

func TestService_CreateNumbersOrdersPerYear(t *testing.T) {
	f := newFixture(t)
	line := apppurchasing.OrderLineRequest{ItemName: "Dryer", Quantity: 1, UnitPriceIncGST: decimal.NewFromInt(100)}

	first := f.placeOrder(t, line)
	second := f.placeOrder(t, line)

	assert.Equal(t, "PO-2026-001", first.Reference)
	assert.Equal(t, "PO-2026-002", second.Reference)
	assert.Equal(t, purchasing.StatusDraft, first.Status)
	assert.True(t, first.Totals.Total.Equal(decimal.NewFromInt(99)))
}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	po := f.placeOrder(t, apppurchasing.OrderLineRequest{ItemName: "Dryer", Quantity: 1, UnitPriceIncGST: decimal.NewFromInt(100)})

	_, err := f.orders.Approve(ctx, po.ID, "boss")
	assert.ErrorIs(t, err, shared.ErrIllegalTransition)

	sent, err := f.orders.Send(ctx, po.ID, "buyer")
	require.NoError(t, err)
	assert.Equal(t, purchasing.StatusSent, sent.Status)

	confirmed, err := f.orders.Approve(ctx, po.ID, "boss")
	require.NoError(t, err)
	assert.Equal(t, purchasing.StatusConfirmed, confirmed.Status)
	assert.Contains(t, confirmed.History, "Approved by boss")

	cancelled, err := f.orders.Cancel(ctx, po.ID, "boss")
	require.NoError(t, err)
	assert.Equal(t, purchasing.StatusCancelled, cancelled.Status)

	_, err = f.orders.Cancel(ctx, po.ID, "boss")
	assert.ErrorIs(t, err, shared.ErrIllegalTransition)
}

func TestService_ReceiveCreatesItemsAndJournals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	store, err := f.stock.CreateStore(ctx, appinv.CreateStoreRequest{Name: "Parramatta", Code: "PAR"})
	require.NoError(t, err)

	po := f.placeOrder(t,
		apppurchasing.OrderLineRequest{ItemName: "Front loader washer", Quantity: 4, UnitPriceIncGST: decimal.NewFromInt(880)},
		apppurchasing.OrderLineRequest{ItemName: "Dryer", Quantity: 2, UnitPriceIncGST: decimal.NewFromInt(500)},
	)
	_, err = f.orders.Send(ctx, po.ID, "buyer")
	require.NoError(t, err)

	washerLine, dryerLine := po.Items[0].ID, po.Items[1].ID
	got, err := f.orders.Receive(ctx, po.ID, apppurchasing.ReceiveOrderRequest{
		ReceivingStoreID: store.ID,
		Aisle:            "B4",
		Items: []apppurchasing.ReceiveLine{
			{ID: washerLine, ReceivedQuantity: 3},
			{ID: dryerLine, ReceivedQuantity: 0},
		},
		Actor: "dock",
	})
	require.NoError(t, err)
	assert.Equal(t, purchasing.StatusPartiallyReceived, got.Status)
	assert.Contains(t, got.History, "Received items at Parramatta")
	assert.Equal(t, int64(1), got.Items[0].Outstanding)

	items, total, err := f.stock.ListItems(ctx, appinv.ItemListFilter{Search: "washer"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	washer := items[0]
	assert.Equal(t, "AUTO-FRONT-LOADER-WASHER", washer.SKU)
	assert.Equal(t, int64(3), washer.TotalOnHand)
	require.Len(t, washer.Locations, 1)
	assert.Equal(t, store.ID, washer.Locations[0].StoreID)
	assert.Equal(t, "B4", washer.Locations[0].Aisle)
	assert.True(t, washer.UnitCost.Equal(decimal.NewFromInt(792)))

	history, _, err := f.stock.ItemHistory(ctx, washer.ID, appinv.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "received", history[0].Kind)
	assert.Equal(t, int64(3), history[0].ReceiveQuantity)
	assert.Equal(t, po.Reference, history[0].Reference)

	// The rest of the order lands on the existing item.
	done, err := f.orders.Receive(ctx, po.ID, apppurchasing.ReceiveOrderRequest{
		ReceivingStoreID: store.ID,
		Items: []apppurchasing.ReceiveLine{
			{ID: washerLine, ReceivedQuantity: 1},
			{ID: dryerLine, ReceivedQuantity: 2},
		},
		Actor: "dock",
	})
	require.NoError(t, err)
	assert.Equal(t, purchasing.StatusCompleted, done.Status)

	again, err := f.stock.GetItem(ctx, washer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), again.TotalOnHand)
}

func TestService_ReceiveRejectsOverReceipt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	store, err := f.stock.CreateStore(ctx, appinv.CreateStoreRequest{Name: "Parramatta", Code: "PAR"})
	require.NoError(t, err)

	po := f.placeOrder(t,
		apppurchasing.OrderLineRequest{ItemName: "Fridge", Quantity: 2, UnitPriceIncGST: decimal.NewFromInt(1000)},
		apppurchasing.OrderLineRequest{ItemName: "Oven", Quantity: 1, UnitPriceIncGST: decimal.NewFromInt(700)},
	)
	_, err = f.orders.Send(ctx, po.ID, "buyer")
	require.NoError(t, err)

	_, err = f.orders.Receive(ctx, po.ID, apppurchasing.ReceiveOrderRequest{
		ReceivingStoreID: store.ID,
		Items: []apppurchasing.ReceiveLine{
			{ID: po.Items[0].ID, ReceivedQuantity: 2},
			{ID: po.Items[1].ID, ReceivedQuantity: 5},
		},
		Actor: "dock",
	})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, total, err := f.stock.ListItems(ctx, appinv.ItemListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	unchanged, err := f.orders.Get(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, purchasing.StatusSent, unchanged.Status)
	assert.Equal(t, int64(0), unchanged.Items[0].ReceivedQuantity)
}

func TestService_ReceiveRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	store, err := f.stock.CreateStore(ctx, appinv.CreateStoreRequest{Name: "Parramatta", Code: "PAR"})
	require.NoError(t, err)
	po := f.placeOrder(t, apppurchasing.OrderLineRequest{ItemName: "Fridge", Quantity: 2, UnitPriceIncGST: decimal.NewFromInt(1000)})
	line := []apppurchasing.ReceiveLine{{ID: po.Items[0].ID, ReceivedQuantity: 1}}

	t.Run("draft orders cannot be received", func(t *testing.T) {
		_, err := f.orders.Receive(ctx, po.ID, apppurchasing.ReceiveOrderRequest{ReceivingStoreID: store.ID, Items: line})
		assert.ErrorIs(t, err, shared.ErrIllegalTransition)
	})

	_, err = f.orders.Send(ctx, po.ID, "buyer")
	require.NoError(t, err)

	t.Run("unknown store", func(t *testing.T) {
		_, err := f.orders.Receive(ctx, po.ID, apppurchasing.ReceiveOrderRequest{ReceivingStoreID: po.ID, Items: line})
		var verr *shared.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "receiving_store_id", verr.Field)
	})

	t.Run("nothing to receive", func(t *testing.T) {
		_, err := f.orders.Receive(ctx, po.ID, apppurchasing.ReceiveOrderRequest{
			ReceivingStoreID: store.ID,
			Items:            []apppurchasing.ReceiveLine{{ID: po.Items[0].ID}},
		})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}
