package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal(t *testing.T) {
	t.Run("new item always produces a created entry", func(t *testing.T) {
		item := newTestItem(t, 0)
		entry := Journal(item, JournalRequest{Actor: "jo"}, testNow)
		require.NotNil(t, entry)
		assert.Equal(t, HistoryCreated, entry.Kind)
		assert.Equal(t, int64(0), entry.Quantity)
	})

	t.Run("unchanged stored item produces nothing", func(t *testing.T) {
		item, _ := newStockedItem(t, 5, 0)
		assert.Nil(t, Journal(item, JournalRequest{}, testNow))
	})

	t.Run("forced entry is written without a change", func(t *testing.T) {
		item, _ := newStockedItem(t, 5, 0)
		entry := Journal(item, JournalRequest{Kind: HistoryTransfer, Force: true}, testNow)
		require.NotNil(t, entry)
		assert.Equal(t, HistoryTransfer, entry.Kind)
		assert.Zero(t, entry.ReceiveQuantity)
		assert.Zero(t, entry.IssueQuantity)
	})

	t.Run("delta direction follows the sign of the change", func(t *testing.T) {
		item, store := newStockedItem(t, 5, 0)
		require.NoError(t, item.RemoveFromLocation(store, 2, testNow))
		entry := Journal(item, JournalRequest{}, testNow)
		require.NotNil(t, entry)
		assert.Equal(t, HistoryIssued, entry.Kind)
		assert.Equal(t, int64(2), entry.IssueQuantity)
		assert.Zero(t, entry.ReceiveQuantity)
		assert.Equal(t, int64(3), entry.Quantity)

		item.MarkPersisted()
		require.NoError(t, item.AddToLocation(store, 4, "", testNow))
		entry = Journal(item, JournalRequest{}, testNow)
		assert.Equal(t, HistoryReceived, entry.Kind)
		assert.Equal(t, int64(4), entry.ReceiveQuantity)
	})
}

func TestNewAuditAdjustmentEntry(t *testing.T) {
	item, store := newStockedItem(t, 17, 0)
	entry := NewAuditAdjustmentEntry(item, &store, 20, 17, "AUD-2026-0001", "mo", testNow)
	assert.Equal(t, HistoryAuditAdjustment, entry.Kind)
	assert.Equal(t, int64(3), entry.IssueQuantity)
	assert.Equal(t, int64(17), entry.Quantity)
	assert.Equal(t, "AUD-2026-0001", entry.Reference)
	assert.NotEqual(t, uuid.Nil, entry.ID)
}
