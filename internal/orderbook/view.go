package orderbook

import "limitbook/internal/domain"

// OrderView is the wire-shape of a single resting order within a
// snapshot, per spec.md §6's `{id, side, price, quantity}`.
type OrderView struct {
	ID       uint64      `json:"id"`
	Side     domain.Side `json:"side"`
	Price    int64       `json:"price"`
	Quantity int64       `json:"quantity"`
}

// LevelView is one aggregated price level in a snapshot. TotalQuantity is
// the sum of RemainingQuantity() across Orders, maintained incrementally
// by PriceLevel.Volume rather than resummed from Orders on every
// snapshot.
type LevelView struct {
	Price         int64       `json:"price"`
	TotalQuantity int64       `json:"total_quantity"`
	Orders        []OrderView `json:"orders"`
}

// BookView is an immutable export of the book's resting liquidity. Both
// Bids and Asks are ordered ascending by price (see SPEC_FULL.md §6's
// resolution of the snapshot-ordering open question); a consumer that
// wants the conventional "best bid first" rendering reverses Bids.
type BookView struct {
	Bids []LevelView `json:"bids"`
	Asks []LevelView `json:"asks"`
}

func levelToView(l *PriceLevel) LevelView {
	orders := make([]OrderView, 0, l.orderCount())
	for e := l.Orders.Front(); e != nil; e = e.Next() {
		o := e.Value.(*domain.Order)
		orders = append(orders, OrderView{
			ID:       o.ID,
			Side:     o.Side,
			Price:    o.Price,
			Quantity: o.RemainingQuantity(),
		})
	}
	return LevelView{Price: l.Price, TotalQuantity: l.Volume, Orders: orders}
}
