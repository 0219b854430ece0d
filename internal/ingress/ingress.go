// Package ingress implements the IngressAdapter of §4.4: a line-delimited
// JSON-over-TCP boundary that parses order submissions, assigns arrival
// sequence numbers, and pushes them into the SPSC queue's single producer
// endpoint.
//
// Grounded in ejyy-femto_go's Server (bufio.Scanner over net.Conn,
// per-connection goroutine, monotonic connection ids), adapted from
// femto_go's positional text wire format to the JSON line framing of §6,
// and in saiputravu-Exchange/internal/net's tomb-supervised accept loop.
package ingress

import (
	"bufio"
	"encoding/json"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"

	"limitbook/internal/domain"
	"limitbook/internal/metrics"
	"limitbook/internal/spscqueue"
)

// Adapter accepts TCP connections and feeds validated orders into the
// single producer endpoint of the engine's SPSC queue. Multiple
// connections are served concurrently, but every one of them synchronizes
// through producerMu before touching the producer endpoint, so the
// endpoint itself is never concurrently touched (§4.4).
type Adapter struct {
	bindAddress string
	producer    *spscqueue.Producer[*domain.Order]
	producerMu  sync.Mutex
	seq         atomic.Uint64
	log         zerolog.Logger
	metrics     *metrics.Metrics

	listener net.Listener
	tomb     tomb.Tomb
}

// New constructs an ingress adapter bound to bindAddress, feeding
// producer. It does not start listening until Start is called.
func New(bindAddress string, producer *spscqueue.Producer[*domain.Order], log zerolog.Logger, m *metrics.Metrics) *Adapter {
	return &Adapter{
		bindAddress: bindAddress,
		producer:    producer,
		log:         log,
		metrics:     m,
	}
}

// Start binds the listener and begins accepting connections on a
// supervised goroutine. It returns once the listener is bound, so callers
// know the bind address is ready before Start returns.
func (a *Adapter) Start() error {
	listener, err := net.Listen("tcp", a.bindAddress)
	if err != nil {
		return err
	}
	a.listener = listener

	a.tomb.Go(func() error {
		<-a.tomb.Dying()
		return a.listener.Close()
	})
	a.tomb.Go(a.acceptLoop)

	a.log.Info().Str("addr", a.bindAddress).Msg("ingress adapter listening")
	return nil
}

// Stop closes the listener and waits for in-flight connection handlers to
// finish.
func (a *Adapter) Stop() error {
	a.tomb.Kill(nil)
	return a.tomb.Wait()
}

func (a *Adapter) acceptLoop() error {
	for {
		conn, err := a.listener.Accept()
		if err != nil {
			select {
			case <-a.tomb.Dying():
				return nil
			default:
				a.log.Error().Err(err).Msg("accept failed")
				continue
			}
		}
		sessionID := uuid.NewString()
		a.tomb.Go(func() error {
			a.handleConnection(conn, sessionID)
			return nil
		})
	}
}

func (a *Adapter) handleConnection(conn net.Conn, sessionID string) {
	defer conn.Close()
	a.log.Info().Str("session", sessionID).Str("remote", conn.RemoteAddr().String()).Msg("client connected")

	scanner := bufio.NewScanner(conn)
	writer := bufio.NewWriter(conn)
	defer writer.Flush()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		resp := a.handleLine(line, sessionID)
		a.writeResponse(writer, resp)
	}

	if err := scanner.Err(); err != nil {
		a.log.Warn().Str("session", sessionID).Err(err).Msg("connection read error")
	}
	a.log.Info().Str("session", sessionID).Msg("client disconnected")
}

func (a *Adapter) writeResponse(w *bufio.Writer, resp response) {
	enc, err := json.Marshal(resp)
	if err != nil {
		return
	}
	w.Write(enc)
	w.WriteByte('\n')
	w.Flush()
}

// handleLine parses and, on success, enqueues a single inbound order
// line, returning the response to send back to the client.
func (a *Adapter) handleLine(line string, sessionID string) response {
	var wire inboundOrder
	if err := json.Unmarshal([]byte(line), &wire); err != nil {
		a.countRejected()
		return parseError("malformed json: " + err.Error())
	}
	if reason, ok := validate(wire); !ok {
		a.countRejected()
		return parseError(reason)
	}

	order := domain.NewOrder(wire.ID, wire.Side, wire.Price, wire.Quantity)
	order.Seq = a.seq.Add(1)

	if err := a.enqueue(order); err != nil {
		order.Destroy()
		a.countDropped()
		a.log.Warn().Str("session", sessionID).Uint64("order_id", wire.ID).Msg("dropped: buffer full")
		return droppedBackpressure()
	}

	a.countAccepted()
	return accepted()
}

// enqueue pushes order into the producer endpoint under producerMu, the
// outer mutex §4.4 requires when more than one connection handler shares
// a single producer endpoint.
func (a *Adapter) enqueue(order *domain.Order) error {
	a.producerMu.Lock()
	defer a.producerMu.Unlock()
	return a.producer.Push(order)
}

func validate(w inboundOrder) (reason string, ok bool) {
	if w.Side != domain.SideBuy && w.Side != domain.SideSell {
		return "side must be Buy or Sell", false
	}
	if w.Price < 0 {
		return "price must be non-negative", false
	}
	if w.Quantity <= 0 {
		return "quantity must be positive", false
	}
	return "", true
}

func (a *Adapter) countAccepted() {
	if a.metrics != nil {
		a.metrics.OrdersAccepted.Inc()
	}
}

func (a *Adapter) countDropped() {
	if a.metrics != nil {
		a.metrics.OrdersDropped.Inc()
	}
}

func (a *Adapter) countRejected() {
	if a.metrics != nil {
		a.metrics.OrdersRejected.Inc()
	}
}
