package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct{ t time.Time }

func (c *manualClock) now() time.Time          { return c.t }
func (c *manualClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestInMemoryIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	clock := &manualClock{t: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	store := NewInMemoryIdempotencyStore(0, WithNow(clock.now))
	defer store.Close()

	t.Run("second mark is rejected", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "po-receive-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "po-receive-1", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)

		held, err := store.IsProcessed(ctx, "po-receive-1")
		require.NoError(t, err)
		assert.True(t, held)
	})

	t.Run("expired keys can be marked again", func(t *testing.T) {
		_, _ = store.MarkProcessed(ctx, "issue-7", time.Minute)
		clock.advance(time.Minute)

		held, _ := store.IsProcessed(ctx, "issue-7")
		assert.False(t, held)

		isNew, err := store.MarkProcessed(ctx, "issue-7", time.Minute)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("release frees the key", func(t *testing.T) {
		_, _ = store.MarkProcessed(ctx, "transfer-3", time.Hour)
		require.NoError(t, store.Release(ctx, "transfer-3"))

		isNew, _ := store.MarkProcessed(ctx, "transfer-3", time.Hour)
		assert.True(t, isNew)
	})
}

func TestInMemoryIdempotencyStore_Purge(t *testing.T) {
	clock := &manualClock{t: time.Now()}
	store := NewInMemoryIdempotencyStore(0, WithNow(clock.now))
	defer store.Close()

	ctx := context.Background()
	_, _ = store.MarkProcessed(ctx, "a", time.Second)
	_, _ = store.MarkProcessed(ctx, "b", time.Hour)
	clock.advance(time.Minute)

	store.purge()
	assert.Equal(t, 1, store.Len())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Millisecond)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
