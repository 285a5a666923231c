package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newTestItem(t *testing.T, reOrder int64) *StockItem {
	t.Helper()
	item, err := NewStockItem(NewStockItemInput{
		SKU:      "TV-55",
		ItemName: "55in Television",
		Category: "tv",
		ReOrder:  reOrder,
		UnitCost: decimal.NewFromInt(400),
	}, testNow)
	require.NoError(t, err)
	return item
}

// newStockedItem returns a persisted item holding qty at a single store
func newStockedItem(t *testing.T, qty, reOrder int64) (*StockItem, uuid.UUID) {
	t.Helper()
	item := newTestItem(t, reOrder)
	store := uuid.New()
	require.NoError(t, item.AddToLocation(store, qty, "A1", testNow))
	item.MarkPersisted()
	return item, store
}

func TestNewStockItem(t *testing.T) {
	t.Run("defaults condition and keeps sku", func(t *testing.T) {
		item := newTestItem(t, 5)
		assert.NotEqual(t, uuid.Nil, item.ID)
		assert.Equal(t, ConditionNew, item.Condition)
		assert.Equal(t, "TV-55", item.SKU)
		assert.Equal(t, int64(0), item.TotalOnHand())
		assert.False(t, item.IsPersisted())
	})

	t.Run("derives sku when missing", func(t *testing.T) {
		item, err := NewStockItem(NewStockItemInput{ItemName: "Fridge freezer with ice maker"}, testNow)
		require.NoError(t, err)
		assert.Equal(t, "AUTO-FRIDGE-FREEZER-WITH-", item.SKU)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewStockItem(NewStockItemInput{SKU: "X"}, testNow)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("rejects unknown condition", func(t *testing.T) {
		_, err := NewStockItem(NewStockItemInput{ItemName: "X", Condition: "broken"}, testNow)
		var verr *shared.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "condition", verr.Field)
	})
}

func TestAutoSKU(t *testing.T) {
	assert.Equal(t, "AUTO-WASHER", AutoSKU("washer"))
	assert.Equal(t, "AUTO-A-B-C", AutoSKU(" a b c "))
	assert.Equal(t, "AUTO-ABCDEFGHIJKLMNOPQRST", AutoSKU("abcdefghijklmnopqrstuvwxyz"))
	assert.Equal(t, "AUTO-WEISSWARE-KÜHLBOX", AutoSKU("Weißware Kühlbox"))
}

func TestStockItem_IssueScenario(t *testing.T) {
	item, _ := newStockedItem(t, 10, 5)

	require.NoError(t, item.Issue(6, nil, "sam", "sold", true, testNow))
	assert.Equal(t, int64(4), item.TotalOnHand())
	assert.True(t, item.IsLowStock())
	assert.Equal(t, LevelLow, item.Level())

	err := item.Issue(10, nil, "sam", "sold", true, testNow)
	var insufficient *shared.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(10), insufficient.Requested)
	assert.Equal(t, int64(4), insufficient.Available)
	assert.Equal(t, int64(4), item.TotalOnHand())
	assert.Equal(t, int64(6), item.IssueQuantity)
}

func TestStockItem_Availability(t *testing.T) {
	item, _ := newStockedItem(t, 10, 0)
	item.SetHolds(3, 2)

	assert.Equal(t, int64(5), item.AvailableForSale())
	assert.Equal(t, item.TotalOnHand()-item.CommittedQuantity()-item.ReservedQuantity(), item.AvailableForSale())
	assert.False(t, item.IsLowStock())

	t.Run("issue beyond availability is rejected even with stock on hand", func(t *testing.T) {
		err := item.Issue(6, nil, "sam", "", true, testNow)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		assert.Equal(t, int64(10), item.TotalOnHand())
	})

	t.Run("fulfilment path only needs physical stock", func(t *testing.T) {
		require.NoError(t, item.Issue(3, nil, "sam", "", false, testNow))
		assert.Equal(t, int64(7), item.TotalOnHand())
	})

	t.Run("holds are validated against availability", func(t *testing.T) {
		item.SetHolds(0, 2)
		assert.NoError(t, item.CheckHoldable(5))
		err := item.CheckHoldable(6)
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.True(t, errors.Is(item.CheckHoldable(0), shared.ErrValidation))
	})

	t.Run("item with no reorder policy is low only at zero", func(t *testing.T) {
		item.SetHolds(7, 0)
		assert.True(t, item.IsLowStock())
		assert.Equal(t, LevelDepleted, item.Level())
	})
}

func TestStockItem_LocationLedger(t *testing.T) {
	t.Run("adding zero is a no-op", func(t *testing.T) {
		item := newTestItem(t, 0)
		require.NoError(t, item.AddToLocation(uuid.New(), 0, "", testNow))
		assert.False(t, item.IsSplit())
		assert.Empty(t, item.Locations)
	})

	t.Run("add upserts and updates aisle", func(t *testing.T) {
		item := newTestItem(t, 0)
		store := uuid.New()
		require.NoError(t, item.AddToLocation(store, 3, "A1", testNow))
		require.NoError(t, item.AddToLocation(store, 2, "B2", testNow))
		require.Len(t, item.Locations, 1)
		assert.Equal(t, int64(5), item.LocationQuantity(store))
		assert.Equal(t, "B2", item.Location(store).Aisle)
		assert.Equal(t, int64(5), item.Quantity)
	})

	t.Run("failed remove leaves state unchanged", func(t *testing.T) {
		item, store := newStockedItem(t, 4, 0)
		before := item.LocationQuantity(store)
		err := item.RemoveFromLocation(store, 5, testNow)
		var insufficient *shared.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		require.NotNil(t, insufficient.StoreID)
		assert.Equal(t, store, *insufficient.StoreID)
		assert.Equal(t, before, item.LocationQuantity(store))
		assert.Equal(t, int64(4), item.Quantity)
	})

	t.Run("remove from unknown store fails", func(t *testing.T) {
		item, _ := newStockedItem(t, 4, 0)
		err := item.RemoveFromLocation(uuid.New(), 1, testNow)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		assert.Len(t, item.Locations, 1)
	})

	t.Run("legacy stock folds into the home store on first location", func(t *testing.T) {
		home := uuid.New()
		item, err := NewStockItem(NewStockItemInput{ItemName: "Kettle", HomeStoreID: &home}, testNow)
		require.NoError(t, err)
		require.NoError(t, item.Receive(7, nil, "", "jo", "", testNow))
		assert.False(t, item.IsSplit())

		other := uuid.New()
		require.NoError(t, item.AddToLocation(other, 3, "", testNow))
		assert.Equal(t, int64(7), item.LocationQuantity(home))
		assert.Equal(t, int64(3), item.LocationQuantity(other))
		assert.Equal(t, int64(10), item.TotalOnHand())
		assert.NoError(t, item.CheckConsistency())
	})

	t.Run("split items need a location when several exist", func(t *testing.T) {
		item, _ := newStockedItem(t, 4, 0)
		require.NoError(t, item.AddToLocation(uuid.New(), 1, "", testNow))
		err := item.Issue(1, nil, "jo", "", true, testNow)
		var verr *shared.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "location_id", verr.Field)

		err = item.Receive(1, nil, "", "jo", "", testNow)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("direct quantity edits are refused once split", func(t *testing.T) {
		item, _ := newStockedItem(t, 4, 0)
		assert.True(t, errors.Is(item.SetQuantity(9, testNow), shared.ErrValidation))

		legacy := newTestItem(t, 0)
		require.NoError(t, legacy.SetQuantity(9, testNow))
		assert.Equal(t, int64(9), legacy.TotalOnHand())
	})
}

func TestStockItem_CheckConsistency(t *testing.T) {
	item, store := newStockedItem(t, 4, 0)
	require.NoError(t, item.AddToLocation(uuid.New(), 6, "", testNow))
	require.NoError(t, item.RemoveFromLocation(store, 2, testNow))
	assert.NoError(t, item.CheckConsistency())
	assert.Equal(t, item.TotalAcrossLocations(), item.Quantity)

	item.Quantity = 99
	var violation *shared.ConsistencyViolation
	require.ErrorAs(t, item.CheckConsistency(), &violation)
	assert.Equal(t, int64(99), violation.Recorded)
	assert.Equal(t, int64(8), violation.LocationSum)
}

func TestStockItem_OverwriteCount(t *testing.T) {
	t.Run("legacy item", func(t *testing.T) {
		item := newTestItem(t, 0)
		require.NoError(t, item.SetQuantity(20, testNow))
		require.NoError(t, item.OverwriteCount(nil, 17, testNow))
		assert.Equal(t, int64(17), item.Quantity)
	})

	t.Run("split item overwrites one location", func(t *testing.T) {
		item, store := newStockedItem(t, 20, 0)
		other := uuid.New()
		require.NoError(t, item.AddToLocation(other, 5, "", testNow))
		require.NoError(t, item.OverwriteCount(&store, 17, testNow))
		assert.Equal(t, int64(17), item.LocationQuantity(store))
		assert.Equal(t, int64(22), item.Quantity)
		assert.True(t, errors.Is(item.OverwriteCount(nil, 1, testNow), shared.ErrValidation))
	})
}

func TestStockItem_Events(t *testing.T) {
	item, store := newStockedItem(t, 10, 0)
	require.NoError(t, item.Receive(2, &store, "", "jo", "", testNow))
	require.NoError(t, item.Issue(1, &store, "jo", "", true, testNow))

	events := item.GetDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeStockReceived, events[0].EventType())
	assert.Equal(t, EventTypeStockIssued, events[1].EventType())
	issued := events[1].(*StockIssuedEvent)
	assert.Equal(t, int64(11), issued.NewTotal)
}
