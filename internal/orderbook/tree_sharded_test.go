package orderbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"limitbook/internal/domain"
)

// These exercise TreeKindSharded directly, since it is an alternative
// priceTree backend selected by config.PriceTreeKind rather than the
// default and would otherwise never run.

func TestShardedTreeCrossOnRest(t *testing.T) {
	b := NewBookWithTreeKind(TreeKindSharded)

	require.Empty(t, b.Submit(order(1, domain.SideSell, 10000, 100)))
	require.Empty(t, b.Submit(order(2, domain.SideSell, 10100, 50)))

	execs := b.Submit(order(3, domain.SideBuy, 10100, 120))
	require.Len(t, execs, 2)
	assert.Equal(t, uint64(1), execs[0].MakerOrderID)
	assert.Equal(t, int64(100), execs[0].Quantity)
	assert.Equal(t, uint64(2), execs[1].MakerOrderID)
	assert.Equal(t, int64(20), execs[1].Quantity)

	ask, ok := b.BestAsk()
	require.True(t, ok)
	assert.Equal(t, int64(10100), ask)
}

func TestShardedTreePricePriorityAcrossBuckets(t *testing.T) {
	b := NewBookWithTreeKind(TreeKindSharded)

	// Prices far enough apart to land in different buckets
	// (defaultBucketSize = 128).
	require.Empty(t, b.Submit(order(1, domain.SideSell, 500, 10)))
	require.Empty(t, b.Submit(order(2, domain.SideSell, 100, 10)))
	require.Empty(t, b.Submit(order(3, domain.SideSell, 900, 10)))

	ask, ok := b.BestAsk()
	require.True(t, ok)
	assert.Equal(t, int64(100), ask)

	execs := b.Submit(order(4, domain.SideBuy, 500, 20))
	require.Len(t, execs, 2)
	assert.Equal(t, int64(100), execs[0].Price)
	assert.Equal(t, int64(500), execs[1].Price)

	ask, ok = b.BestAsk()
	require.True(t, ok)
	assert.Equal(t, int64(900), ask)
}

func TestShardedTreeTimePriorityWithinLevel(t *testing.T) {
	b := NewBookWithTreeKind(TreeKindSharded)

	require.Empty(t, b.Submit(order(1, domain.SideBuy, 200, 10)))
	require.Empty(t, b.Submit(order(2, domain.SideBuy, 200, 10)))

	execs := b.Submit(order(3, domain.SideSell, 200, 15))
	require.Len(t, execs, 2)
	assert.Equal(t, uint64(1), execs[0].MakerOrderID)
	assert.Equal(t, int64(10), execs[0].Quantity)
	assert.Equal(t, uint64(2), execs[1].MakerOrderID)
	assert.Equal(t, int64(5), execs[1].Quantity)
}

func TestShardedTreeBucketEmptiedAndRefilled(t *testing.T) {
	b := NewBookWithTreeKind(TreeKindSharded)

	require.Empty(t, b.Submit(order(1, domain.SideSell, 1000, 5)))
	execs := b.Submit(order(2, domain.SideBuy, 1000, 5))
	require.Len(t, execs, 1)

	_, ok := b.BestAsk()
	assert.False(t, ok)

	// Re-insert into the now-empty bucket and confirm it still tracks best.
	require.Empty(t, b.Submit(order(3, domain.SideSell, 1000, 8)))
	ask, ok := b.BestAsk()
	require.True(t, ok)
	assert.Equal(t, int64(1000), ask)
}

func TestShardedTreeSnapshotOrderingAscending(t *testing.T) {
	b := NewBookWithTreeKind(TreeKindSharded)

	require.Empty(t, b.Submit(order(1, domain.SideSell, 500, 1)))
	require.Empty(t, b.Submit(order(2, domain.SideSell, 100, 1)))
	require.Empty(t, b.Submit(order(3, domain.SideSell, 900, 1)))

	view := b.Snapshot()
	require.Len(t, view.Asks, 3)
	assert.Equal(t, []int64{100, 500, 900},
		[]int64{view.Asks[0].Price, view.Asks[1].Price, view.Asks[2].Price})
}
