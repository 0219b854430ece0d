package engine

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"limitbook/internal/config"
	"limitbook/internal/domain"
	"limitbook/internal/orderbook"
	"limitbook/internal/spscqueue"
)

func newTestLoop(t *testing.T) (*Loop, *spscqueue.Producer[*domain.Order]) {
	t.Helper()
	producer, consumer := spscqueue.New[*domain.Order](64)
	book := orderbook.NewBook()
	l := New(consumer, book, config.IdleYield, zerolog.Nop(), nil, 16)
	l.Start()
	t.Cleanup(func() {
		require.NoError(t, l.Stop())
	})
	return l, producer
}

func TestEngineMatchesCrossingOrders(t *testing.T) {
	l, producer := newTestLoop(t)

	require.NoError(t, producer.Push(domain.NewOrder(1, domain.SideSell, 10000, 100)))
	require.NoError(t, producer.Push(domain.NewOrder(2, domain.SideBuy, 10000, 100)))

	select {
	case exec := <-l.Executions():
		require.Equal(t, uint64(1), exec.MakerOrderID)
		require.Equal(t, uint64(2), exec.TakerOrderID)
		require.Equal(t, int64(10000), exec.Price)
		require.Equal(t, int64(100), exec.Quantity)
	case <-time.After(2 * time.Second):
		t.Fatal("expected an execution, got none")
	}
}

func TestEngineRestsNonCrossingOrder(t *testing.T) {
	l, producer := newTestLoop(t)

	require.NoError(t, producer.Push(domain.NewOrder(1, domain.SideBuy, 9900, 10)))

	require.Eventually(t, func() bool {
		bid, ok := l.Snapshot().Bids, true
		return ok && len(bid) == 1 && bid[0].Price == 9900
	}, 2*time.Second, time.Millisecond)
}

func TestEngineGracefulShutdownDrains(t *testing.T) {
	producer, consumer := spscqueue.New[*domain.Order](64)
	book := orderbook.NewBook()
	l := New(consumer, book, config.IdleYield, zerolog.Nop(), nil, 16)
	l.Start()

	require.NoError(t, producer.Push(domain.NewOrder(1, domain.SideBuy, 9900, 10)))
	require.NoError(t, l.Stop())

	view := l.Snapshot()
	require.Len(t, view.Bids, 1)
}
