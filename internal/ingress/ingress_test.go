package ingress

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"limitbook/internal/domain"
	"limitbook/internal/spscqueue"
)

func TestHandleLineAcceptsValidOrder(t *testing.T) {
	producer, consumer := spscqueue.New[*domain.Order](8)
	a := New(":0", producer, zerolog.Nop(), nil)

	resp := a.handleLine(`{"id":1,"side":"Buy","price":10000,"quantity":5}`, "s1")
	require.Equal(t, accepted(), resp)

	order, err := consumer.Pop()
	require.NoError(t, err)
	require.Equal(t, uint64(1), order.ID)
	require.Equal(t, domain.SideBuy, order.Side)
	require.Equal(t, int64(10000), order.Price)
	require.Equal(t, int64(5), order.Quantity)
	require.Equal(t, uint64(1), order.Seq)
}

func TestHandleLineRejectsMalformedJSON(t *testing.T) {
	producer, _ := spscqueue.New[*domain.Order](8)
	a := New(":0", producer, zerolog.Nop(), nil)

	resp := a.handleLine(`not json`, "s1")
	require.Equal(t, "error", resp.Status)
}

func TestHandleLineRejectsZeroQuantity(t *testing.T) {
	producer, _ := spscqueue.New[*domain.Order](8)
	a := New(":0", producer, zerolog.Nop(), nil)

	resp := a.handleLine(`{"id":1,"side":"Buy","price":10000,"quantity":0}`, "s1")
	require.Equal(t, "error", resp.Status)
}

func TestHandleLineRejectsNegativePrice(t *testing.T) {
	producer, _ := spscqueue.New[*domain.Order](8)
	a := New(":0", producer, zerolog.Nop(), nil)

	resp := a.handleLine(`{"id":1,"side":"Buy","price":-1,"quantity":5}`, "s1")
	require.Equal(t, "error", resp.Status)
}

func TestHandleLineBackpressureWhenQueueFull(t *testing.T) {
	producer, _ := spscqueue.New[*domain.Order](1)
	a := New(":0", producer, zerolog.Nop(), nil)

	resp := a.handleLine(`{"id":1,"side":"Buy","price":10000,"quantity":5}`, "s1")
	require.Equal(t, accepted(), resp)

	resp = a.handleLine(`{"id":2,"side":"Buy","price":10000,"quantity":5}`, "s1")
	require.Equal(t, droppedBackpressure(), resp)
}

func TestAdapterEndToEndOverTCP(t *testing.T) {
	producer, consumer := spscqueue.New[*domain.Order](8)
	a := New("127.0.0.1:0", producer, zerolog.Nop(), nil)
	require.NoError(t, a.Start())
	defer a.Stop()

	addr := a.listener.Addr().String()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("{\"id\":7,\"side\":\"Sell\",\"price\":100,\"quantity\":3}\n"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)

	var resp response
	require.NoError(t, json.Unmarshal([]byte(line), &resp))
	require.Equal(t, "accepted", resp.Status)

	order, err := consumer.Pop()
	require.NoError(t, err)
	require.Equal(t, uint64(7), order.ID)
}
