package httpapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"limitbook/internal/metrics"
	"limitbook/internal/orderbook"
)

type fakeSource struct {
	view orderbook.BookView
}

func (f fakeSource) Snapshot() orderbook.BookView { return f.view }

func TestSnapshotRoute(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	src := fakeSource{view: orderbook.BookView{
		Bids: []orderbook.LevelView{{Price: 100, Orders: nil}},
	}}

	s := New(addr, src, metrics.New(), true, true, zerolog.Nop())
	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Stop(ctx)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/snapshot")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var view orderbook.BookView
		if json.NewDecoder(resp.Body).Decode(&view) != nil {
			return false
		}
		return len(view.Bids) == 1 && view.Bids[0].Price == 100
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMetricsRouteServesPrometheusFormat(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	s := New(addr, fakeSource{}, metrics.New(), false, true, zerolog.Nop())
	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Stop(ctx)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)
}
