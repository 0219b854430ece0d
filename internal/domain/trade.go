package domain

import "time"

// TradeExecution is emitted by the match loop and never stored in the
// book. Unlike Order it is not pool-backed: it is produced by value and
// handed to an observer with no back-reference kept by the book, so
// pooling (which would require the observer to call a Destroy/Release
// method before the value's lifetime is truly over) would reintroduce
// the ownership coupling this type is meant to avoid.
type TradeExecution struct {
	MakerOrderID uint64
	TakerOrderID uint64
	Price        int64 // always the maker's resting price
	Quantity     int64
	Timestamp    time.Time
}
