package purchasing

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

var testNow = time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)

func newTestOrder(t *testing.T) *PurchaseOrder {
	t.Helper()
	po, err := NewPurchaseOrder(Reference(2026, 7), "Acme Wholesale", "", "jo", []ItemInput{
		{ItemName: "Dishwasher", Quantity: 4, UnitPriceIncGST: decimal.NewFromInt(100), DiscountPercent: decimal.NewFromInt(10)},
		{ItemName: "Oven", Quantity: 1, UnitPriceIncGST: decimal.NewFromInt(50), DiscountPercent: decimal.Zero},
	}, testNow)
	require.NoError(t, err)
	return po
}

func TestReference(t *testing.T) {
	assert.Equal(t, "PO-2026-007", Reference(2026, 7))
	assert.Equal(t, "PO-2026-1234", Reference(2026, 1234))
}

func TestNewPurchaseOrder_Validation(t *testing.T) {
	_, err := NewPurchaseOrder("PO-1", "", "", "jo", []ItemInput{{ItemName: "x", Quantity: 1}}, testNow)
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = NewPurchaseOrder("PO-1", "Acme", "", "jo", nil, testNow)
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = NewPurchaseOrder("PO-1", "Acme", "", "jo", []ItemInput{{ItemName: "x", Quantity: 0}}, testNow)
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = NewPurchaseOrder("PO-1", "Acme", "", "jo", []ItemInput{{ItemName: "x", Quantity: 1, DiscountPercent: decimal.NewFromInt(120)}}, testNow)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestPurchaseOrder_Totals(t *testing.T) {
	po := newTestOrder(t)
	totals := po.Totals(DefaultTaxRates())

	// dishwasher: 90 x 4 = 360, 10% off = 36, gst on 324 = 32.40
	// oven: 45 x 1 = 45, gst 4.50
	assert.True(t, totals.Subtotal.Equal(decimal.NewFromInt(405)), totals.Subtotal.String())
	assert.True(t, totals.Discount.Equal(decimal.NewFromInt(36)), totals.Discount.String())
	assert.True(t, totals.GST.Equal(decimal.RequireFromString("36.90")), totals.GST.String())
	assert.True(t, totals.Total.Equal(decimal.RequireFromString("405.90")), totals.Total.String())
}

func TestPurchaseOrder_Lifecycle(t *testing.T) {
	t.Run("draft to confirmed", func(t *testing.T) {
		po := newTestOrder(t)
		assert.True(t, errors.Is(po.Approve(testNow), shared.ErrIllegalTransition))
		require.NoError(t, po.Send(testNow))
		require.NoError(t, po.Approve(testNow))
		assert.Equal(t, StatusConfirmed, po.Status)
		assert.True(t, errors.Is(po.Send(testNow), shared.ErrIllegalTransition))
	})

	t.Run("cannot receive a draft", func(t *testing.T) {
		po := newTestOrder(t)
		err := po.CheckReceivable(map[uuid.UUID]int64{po.Items[0].ID: 1})
		assert.True(t, errors.Is(err, shared.ErrIllegalTransition))
	})

	t.Run("partial then complete receipt", func(t *testing.T) {
		po := newTestOrder(t)
		require.NoError(t, po.Send(testNow))

		require.NoError(t, po.RecordReceipt(map[uuid.UUID]int64{po.Items[0].ID: 2}, "Main St", testNow))
		assert.Equal(t, StatusPartiallyReceived, po.Status)
		assert.Contains(t, po.History, "Received items at Main St")

		err := po.CheckReceivable(map[uuid.UUID]int64{po.Items[0].ID: 3})
		assert.True(t, errors.Is(err, shared.ErrValidation))

		require.NoError(t, po.RecordReceipt(map[uuid.UUID]int64{po.Items[0].ID: 2, po.Items[1].ID: 1}, "Main St", testNow))
		assert.Equal(t, StatusCompleted, po.Status)
		assert.True(t, errors.Is(po.Cancel(testNow), shared.ErrIllegalTransition))
	})

	t.Run("unknown line is rejected", func(t *testing.T) {
		po := newTestOrder(t)
		require.NoError(t, po.Send(testNow))
		err := po.CheckReceivable(map[uuid.UUID]int64{uuid.New(): 1})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}
