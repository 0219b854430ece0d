// Package engine implements the EngineLoop of §4.3: the sole consumer of
// the SPSC queue, applying inbound orders to the single-instrument
// order book on one dedicated goroutine and publishing executions and
// book snapshots for observability.
//
// Grounded in the teacher's matching.MatchingEngine.Start goroutine (the
// runtime.LockOSThread + idle-select loop), generalized from per-symbol
// multi-book routing to the single book this spec names, and supervised
// with a gopkg.in/tomb.v2 Tomb (grounded in saiputravu-Exchange's
// worker/session lifecycle) instead of a bare stopChan+close.
package engine

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"

	"limitbook/internal/config"
	"limitbook/internal/domain"
	"limitbook/internal/metrics"
	"limitbook/internal/orderbook"
	"limitbook/internal/spscqueue"
)

// Loop is the single-threaded engine that owns an orderbook.Book.
type Loop struct {
	consumer   *spscqueue.Consumer[*domain.Order]
	book       *orderbook.Book
	idlePolicy config.IdlePolicy
	log        zerolog.Logger
	metrics    *metrics.Metrics

	executions chan domain.TradeExecution
	snapshot   atomic.Value // holds orderbook.BookView

	tomb tomb.Tomb
}

// New constructs an engine loop. executionsBuffer sizes the fan-out
// channel executions are published on; 0 makes it unbuffered, blocking
// the engine until a reader drains it, which would violate the "no
// suspension on the fast path beyond queue idle policy" posture of §5 —
// callers should size this to the expected execution burst (or always
// keep a reader draining promptly).
func New(consumer *spscqueue.Consumer[*domain.Order], book *orderbook.Book, idlePolicy config.IdlePolicy, log zerolog.Logger, m *metrics.Metrics, executionsBuffer int) *Loop {
	l := &Loop{
		consumer:   consumer,
		book:       book,
		idlePolicy: idlePolicy,
		log:        log,
		metrics:    m,
		executions: make(chan domain.TradeExecution, executionsBuffer),
	}
	l.snapshot.Store(orderbook.BookView{})
	return l
}

// Start launches the matching loop on a dedicated, OS-thread-locked
// goroutine and returns immediately.
func (l *Loop) Start() {
	l.tomb.Go(func() error {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		l.run()
		return nil
	})
}

// Stop signals cooperative shutdown and blocks until the loop has drained
// and exited.
func (l *Loop) Stop() error {
	l.tomb.Kill(nil)
	return l.tomb.Wait()
}

// Executions exposes the stream of trade executions. Every execution
// resulting from one Submit is sent before the next order's first
// execution is sent, satisfying §6's execution-stream contract.
func (l *Loop) Executions() <-chan domain.TradeExecution {
	return l.executions
}

// Snapshot returns the most recently published BookView. It is safe to
// call from any goroutine: it reads an immutable value out of an
// atomic.Value the engine goroutine republishes after every processed
// order, so the HTTP observability surface never touches the live Book
// or takes a lock against the engine's fast path (§9's preferred shape).
func (l *Loop) Snapshot() orderbook.BookView {
	return l.snapshot.Load().(orderbook.BookView)
}

func (l *Loop) run() {
	l.log.Info().Msg("engine loop starting")
	for {
		select {
		case <-l.tomb.Dying():
			l.drainAndExit()
			return
		default:
		}

		order, err := l.consumer.Pop()
		if err != nil {
			l.idle()
			continue
		}

		l.process(order)
	}
}

// drainAndExit processes whatever is still queued before the loop exits,
// per §4.3's "drain, finalize, and exit" shutdown contract.
func (l *Loop) drainAndExit() {
	for {
		order, err := l.consumer.Pop()
		if err != nil {
			l.log.Info().Msg("engine loop drained, exiting")
			return
		}
		l.process(order)
	}
}

func (l *Loop) process(order *domain.Order) {
	executions := l.book.Submit(order)
	now := time.Now()
	for i := range executions {
		executions[i].Timestamp = now
		l.executions <- executions[i]
		if l.metrics != nil {
			l.metrics.TradesExecuted.Inc()
		}
	}
	l.snapshot.Store(l.book.Snapshot())
	if l.metrics != nil {
		l.metrics.QueueOccupancy.Set(float64(l.consumer.Len()))
	}
}

func (l *Loop) idle() {
	if l.metrics != nil {
		l.metrics.EngineIdleSpins.Inc()
	}
	switch l.idlePolicy {
	case config.IdleSpin:
		// Busy-spin: loop straight back to Pop() without relinquishing
		// the goroutine, for minimal latency at the cost of a fully
		// pinned core.
	case config.IdlePark:
		time.Sleep(time.Millisecond)
	default: // IdleYield
		runtime.Gosched()
	}
}
