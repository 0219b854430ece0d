// Command profile runs the same load shape as cmd/benchmark under the
// Go CPU profiler, for use with `go tool pprof`.
package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
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
	cpuFile, err := os.Create("cpu.prof")
	if err != nil {
		panic(err)
	}
	defer cpuFile.Close()

	pprof.StartCPUProfile(cpuFile)
	defer pprof.StopCPUProfile()

	fmt.Println("=== profiling run ===")
	fmt.Println("writing CPU profile to cpu.prof")

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

	duration := 10 * time.Second
	numWorkers := runtime.NumCPU() - 2
	if numWorkers < 1 {
		numWorkers = 1
	}

	fmt.Printf("cpus: %d\n", runtime.NumCPU())
	fmt.Printf("submitters: %d\n", numWorkers)
	fmt.Printf("duration: %v\n\n", duration)

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

	time.Sleep(duration)
	close(stopChan)
	wg.Wait()
	time.Sleep(500 * time.Millisecond)

	elapsed := time.Since(startTime)
	totalOrders := orderCount.Load()
	totalTrades := tradeCount.Load()

	fmt.Println("\n=== results ===")
	fmt.Printf("total orders: %d\n", totalOrders)
	fmt.Printf("total trades: %d\n", totalTrades)
	fmt.Printf("order throughput: %.0f orders/sec\n", float64(totalOrders)/elapsed.Seconds())
	fmt.Printf("trade throughput: %.0f trades/sec\n", float64(totalTrades)/elapsed.Seconds())

	fmt.Println("\nanalyze with:")
	fmt.Println("  go tool pprof -http=:8080 cpu.prof")
	fmt.Println("  or: go tool pprof cpu.prof")
	fmt.Println("  then: top10")
	fmt.Println("  then: list <function name>")
}
