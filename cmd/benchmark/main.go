// Command benchmark drives the matching engine with many concurrent
// submitters and reports throughput and match rate, bypassing the
// network entirely. The SPSC queue accepts pushes from exactly one
// producer at a time, so the worker goroutines below share a single
// producer guarded by a mutex, the same pattern internal/ingress uses
// to fan many TCP connections into one queue.
package main

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"limitbook/internal/config"
	"limitbook/internal/domain"
	"limitbook/internal/engine"
	"limitbook/internal/metrics"
	"limitbook/internal/orderbook"
	"limitbook/internal/spscqueue"
)

func main() {
	fmt.Println("=== matching engine throughput benchmark ===")

	m := metrics.New()
	producer, consumer := spscqueue.New[*domain.Order](1 << 16)
	book := orderbook.NewBook()

	eng := engine.New(consumer, book, config.IdleYield, zerolog.Nop(), m, 1<<16)
	eng.Start()
	defer eng.Stop()

	var orderCount, tradeCount atomic.Int64
	go func() {
		for range eng.Executions() {
			tradeCount.Add(1)
		}
	}()

	testDuration := 5 * time.Second
	numWorkers := runtime.NumCPU() - 2
	if numWorkers < 1 {
		numWorkers = 1
	}

	fmt.Printf("starting benchmark...\n")
	fmt.Printf("cpus: %d\n", runtime.NumCPU())
	fmt.Printf("submitters: %d (NumCPU - 2)\n", numWorkers)
	fmt.Printf("duration: %v\n\n", testDuration)

	var producerMu sync.Mutex
	var nextID atomic.Uint64
	startTime := time.Now()
	stopChan := make(chan struct{})
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			orderID := 0
			for {
				select {
				case <-stopChan:
					return
				default:
					side := domain.SideBuy
					price := int64(50000 + orderID%200)
					if orderID%2 != 0 {
						side = domain.SideSell
					}

					order := domain.NewOrder(nextID.Add(1), side, price, 1)

					producerMu.Lock()
					err := producer.Push(order)
					producerMu.Unlock()

					if err == nil {
						orderCount.Add(1)
					} else {
						order.Destroy()
						runtime.Gosched()
					}
					orderID++
				}
			}
		}(w)
	}

	ticker := time.NewTicker(time.Second)
	tickerDone := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				elapsed := time.Since(startTime)
				orders := orderCount.Load()
				trades := tradeCount.Load()
				qps := float64(orders) / elapsed.Seconds()
				tps := float64(trades) / elapsed.Seconds()
				fmt.Printf("[%.0fs] orders: %d (%.0f/s) | trades: %d (%.0f/s)\n",
					elapsed.Seconds(), orders, qps, trades, tps)
			case <-tickerDone:
				return
			}
		}
	}()

	time.Sleep(testDuration)
	close(stopChan)
	wg.Wait()
	ticker.Stop()
	close(tickerDone)

	time.Sleep(500 * time.Millisecond)

	elapsed := time.Since(startTime)
	totalOrders := orderCount.Load()
	totalTrades := tradeCount.Load()

	qps := float64(totalOrders) / elapsed.Seconds()
	tps := float64(totalTrades) / elapsed.Seconds()
	avgLatency := elapsed.Seconds() * 1e6 / float64(totalOrders)
	matchRate := float64(totalTrades) / float64(totalOrders) * 100

	fmt.Println("\n=== results ===")
	fmt.Printf("duration:          %v\n", elapsed)
	fmt.Printf("total orders:      %d\n", totalOrders)
	fmt.Printf("total trades:      %d\n", totalTrades)
	fmt.Printf("order throughput:  %.0f orders/sec\n", qps)
	fmt.Printf("trade throughput:  %.0f trades/sec\n", tps)
	fmt.Printf("avg latency:       %.2f us/order\n", avgLatency)
	fmt.Printf("match rate:        %.2f%%\n", matchRate)

	fmt.Println("\n=== rating ===")
	switch {
	case qps >= 1000000:
		fmt.Println("extreme throughput (>1M qps)")
	case qps >= 500000:
		fmt.Println("excellent throughput (500k-1M qps)")
	case qps >= 100000:
		fmt.Println("good throughput (100k-500k qps)")
	case qps >= 10000:
		fmt.Println("adequate throughput (10k-100k qps)")
	default:
		fmt.Println("low throughput (<10k qps)")
	}

	// Only the engine goroutine may touch book directly; everything here
	// reads the published snapshot instead.
	view := eng.Snapshot()
	fmt.Println("\n=== book state ===")
	if len(view.Bids) > 0 {
		fmt.Printf("best bid: %d\n", view.Bids[len(view.Bids)-1].Price)
	} else {
		fmt.Println("best bid: none")
	}
	if len(view.Asks) > 0 {
		fmt.Printf("best ask: %d\n", view.Asks[0].Price)
	} else {
		fmt.Println("best ask: none")
	}

	fmt.Println("\nbid depth (top 5):")
	for i, l := range topLevels(view.Bids, 5, true) {
		fmt.Printf("  %d. price: %d, orders: %d\n", i+1, l.Price, len(l.Orders))
	}

	fmt.Println("\nask depth (top 5):")
	for i, l := range topLevels(view.Asks, 5, false) {
		fmt.Printf("  %d. price: %d, orders: %d\n", i+1, l.Price, len(l.Orders))
	}
}

// topLevels returns up to n levels closest to the touch. Bids are stored
// ascending, so the best bids sit at the end; asks are already best-first.
func topLevels(levels []orderbook.LevelView, n int, reverse bool) []orderbook.LevelView {
	if reverse {
		out := make([]orderbook.LevelView, 0, n)
		for i := len(levels) - 1; i >= 0 && len(out) < n; i-- {
			out = append(out, levels[i])
		}
		return out
	}
	if len(levels) > n {
		return levels[:n]
	}
	return levels
}
