package order_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"repairbot/internal/catalog"
	"repairbot/internal/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedgerCommit(t *testing.T) {
	ctx := context.Background()

	t.Run("should assign per-owner sequential ids", func(t *testing.T) {
		l := order.NewMemoryLedger()

		id1, err := l.Commit(ctx, order.Order{OwnerID: 7, Phone: "+1-555-0100"})
		require.NoError(t, err)
		id2, err := l.Commit(ctx, order.Order{OwnerID: 7, Phone: "+1-555-0100"})
		require.NoError(t, err)
		other, err := l.Commit(ctx, order.Order{OwnerID: 9, Phone: "+1-555-0200"})
		require.NoError(t, err)

		assert.Equal(t, "ORD-7-1", id1)
		assert.Equal(t, "ORD-7-2", id2)
		assert.Equal(t, "ORD-9-1", other, "owners get independent counters")
	})

	t.Run("should default status and creation time", func(t *testing.T) {
		l := order.NewMemoryLedger()

		_, err := l.Commit(ctx, order.Order{OwnerID: 1})
		require.NoError(t, err)

		orders, err := l.ListByOwner(ctx, 1)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, order.StatusReceived, orders[0].Status)
		assert.False(t, orders[0].CreatedAt.IsZero())
	})

	t.Run("should reject missing owner", func(t *testing.T) {
		l := order.NewMemoryLedger()

		_, err := l.Commit(ctx, order.Order{})
		require.Error(t, err)
	})
}

func TestMemoryLedgerListByOwner(t *testing.T) {
	ctx := context.Background()
	l := order.NewMemoryLedger()

	devices := []string{"iPhone 12", "Pixel 8", "Galaxy S23"}
	for _, d := range devices {
		_, err := l.Commit(ctx, order.Order{
			OwnerID: 1,
			Service: catalog.Service{ID: "screen", DisplayName: "Screen"},
			Device:  d,
		})
		require.NoError(t, err)
	}
	_, err := l.Commit(ctx, order.Order{OwnerID: 2, Device: "Nokia 3310"})
	require.NoError(t, err)

	orders, err := l.ListByOwner(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	for i, d := range devices {
		assert.Equal(t, d, orders[i].Device, "creation order preserved")
	}

	none, err := l.ListByOwner(ctx, 404)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryLedgerConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	l := order.NewMemoryLedger()

	const owners = 4
	const perOwner = 25

	var wg sync.WaitGroup
	ids := make(chan string, owners*perOwner)
	for owner := int64(1); owner <= owners; owner++ {
		for i := 0; i < perOwner; i++ {
			wg.Add(1)
			go func(owner int64) {
				defer wg.Done()
				id, err := l.Commit(ctx, order.Order{OwnerID: owner})
				assert.NoError(t, err)
				ids <- id
			}(owner)
		}
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		require.False(t, seen[id], fmt.Sprintf("duplicate order id %s", id))
		seen[id] = true
	}
	assert.Len(t, seen, owners*perOwner)

	for owner := int64(1); owner <= owners; owner++ {
		orders, err := l.ListByOwner(ctx, owner)
		require.NoError(t, err)
		assert.Len(t, orders, perOwner)
	}
}
