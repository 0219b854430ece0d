package domain

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Side is the direction of an order.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideBuy {
		return "Buy"
	}
	return "Sell"
}

// MarshalJSON encodes Side as the wire strings "Buy"/"Sell" (spec.md §6).
func (s Side) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the wire strings "Buy"/"Sell" into Side.
func (s *Side) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "Buy":
		*s = SideBuy
	case "Sell":
		*s = SideSell
	default:
		return fmt.Errorf("domain: invalid side %q", str)
	}
	return nil
}

// OrderStatus is the current lifecycle state of an order.
type OrderStatus int

const (
	StatusPending OrderStatus = iota
	StatusPartialFilled
	StatusFilled
	StatusRested
)

// Order is a single-instrument limit order. It is immutable on ingress;
// only Filled (and therefore RemainingQuantity/Status) change once it is
// resting in a PriceLevel.
//
// Hot fields (touched on every match-loop iteration) are grouped first to
// keep them in one cache line; Seq/Timestamp are cold, touched only at
// construction and ingress.
type Order struct {
	ID          uint64
	Price       int64
	Quantity    int64
	Filled      int64
	Side        Side
	Status      OrderStatus
	ListElement interface{} // *list.Element once resting, for O(1) removal

	Seq       uint64 // arrival sequence, assigned by IngressAdapter
	Timestamp time.Time
}

var orderPool = sync.Pool{
	New: func() any { return &Order{} },
}

// NewOrder creates a limit order from the pool. id is the client/ingress
// assigned order id; quantity must already be validated positive and
// price non-negative by the caller (ingress rejects otherwise).
func NewOrder(id uint64, side Side, price, quantity int64) *Order {
	o := orderPool.Get().(*Order)
	o.ID = id
	o.Side = side
	o.Price = price
	o.Quantity = quantity
	o.Filled = 0
	o.Status = StatusPending
	o.ListElement = nil
	o.Seq = 0
	o.Timestamp = time.Now()
	return o
}

// IsFilled reports whether the order has no remaining quantity.
func (o *Order) IsFilled() bool {
	return o.Filled >= o.Quantity
}

// RemainingQuantity returns the unfilled quantity.
func (o *Order) RemainingQuantity() int64 {
	return o.Quantity - o.Filled
}

// Fill subtracts qty from the remaining quantity and updates status.
func (o *Order) Fill(qty int64) {
	o.Filled += qty
	if o.IsFilled() {
		o.Status = StatusFilled
	} else {
		o.Status = StatusPartialFilled
	}
}

// Rest marks the order as resting with its current remaining quantity.
func (o *Order) Rest() {
	o.Status = StatusRested
}

// Destroy returns the order to the pool. Only safe once the order is no
// longer reachable from any PriceLevel.
func (o *Order) Destroy() {
	o.Reset()
	orderPool.Put(o)
}

// Reset zeroes the order so the compiler can use a single DUFFZERO/memclr
// instead of field-by-field assignment when it is returned to the pool.
func (o *Order) Reset() {
	*o = Order{}
}
