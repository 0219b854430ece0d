// Package orderbook implements the two-sided, price-time-priority limit
// order book: §4.2 of the specification. It is grounded in the teacher's
// orderbook.OrderBook + PriceTreeInterface, generalized from a
// multi-symbol router down to the single instrument this revision
// targets, and rewired so Submit runs the full match loop (the teacher
// split matching into matching.MatchingEngine instead).
package orderbook

import "limitbook/internal/domain"

// Book is a single-instrument limit order book. It is not safe for
// concurrent use — per §5, it is owned exclusively by one engine thread;
// any cross-thread access (e.g. an HTTP snapshot reader) must go through
// a published, immutable BookView rather than touching the Book itself.
type Book struct {
	bids priceTree // descending: highest price first
	asks priceTree // ascending: lowest price first
}

// NewBook constructs an empty book using the default price-tree
// implementation (TreeKindHashMapList).
func NewBook() *Book {
	return NewBookWithTreeKind(TreeKindHashMapList)
}

// NewBookWithTreeKind constructs an empty book backed by the given
// priceTree implementation on both sides.
func NewBookWithTreeKind(kind TreeKind) *Book {
	return &Book{
		bids: newPriceTree(kind, true),
		asks: newPriceTree(kind, false),
	}
}

// Submit runs the match loop of §4.2 against the incoming order taker,
// then rests any residual quantity on taker's own side. It returns every
// TradeExecution produced, in the order they occurred. taker.Quantity
// must already be positive (ingress rejects zero-quantity orders before
// they reach the book).
func (b *Book) Submit(taker *domain.Order) []domain.TradeExecution {
	var opposing priceTree
	if taker.Side == domain.SideBuy {
		opposing = b.asks
	} else {
		opposing = b.bids
	}

	var executions []domain.TradeExecution

	for taker.RemainingQuantity() > 0 {
		level := opposing.best()
		if level == nil {
			break
		}
		if !crosses(taker, level.Price) {
			break
		}

		maker := level.front()
		qty := min(taker.RemainingQuantity(), maker.RemainingQuantity())

		executions = append(executions, domain.TradeExecution{
			MakerOrderID: maker.ID,
			TakerOrderID: taker.ID,
			Price:        level.Price,
			Quantity:     qty,
		})

		taker.Fill(qty)
		maker.Fill(qty)
		level.subtractVolume(qty)

		if maker.IsFilled() {
			opposing.removeFront(level)
			maker.Destroy()
		}
	}

	if taker.RemainingQuantity() > 0 {
		taker.Rest()
		restingSide(b, taker.Side).insert(taker)
	} else {
		// Fully filled, never rested: nothing keeps a reference to this
		// order once Submit returns, so it can go back to the pool.
		taker.Destroy()
	}

	return executions
}

func restingSide(b *Book, side domain.Side) priceTree {
	if side == domain.SideBuy {
		return b.bids
	}
	return b.asks
}

// crosses reports whether taker's limit permits matching against the
// opposing best price p (§4.2 step 2c).
func crosses(taker *domain.Order, p int64) bool {
	if taker.Side == domain.SideBuy {
		return taker.Price >= p
	}
	return taker.Price <= p
}

func min(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// BestBid returns the current best bid price, or (0, false) if the bid
// side is empty.
func (b *Book) BestBid() (int64, bool) { return b.bids.bestPrice() }

// BestAsk returns the current best ask price, or (0, false) if the ask
// side is empty.
func (b *Book) BestAsk() (int64, bool) { return b.asks.bestPrice() }

// Snapshot returns an immutable view of every resting price level on both
// sides, ascending by price on both sides (see SPEC_FULL.md §6).
func (b *Book) Snapshot() BookView {
	bidLevels := b.bids.depth(b.bids.size())
	askLevels := b.asks.depth(b.asks.size())

	view := BookView{
		Bids: make([]LevelView, len(bidLevels)),
		Asks: make([]LevelView, len(askLevels)),
	}
	// bids.depth returns best-to-worst, i.e. descending by price for the
	// bid side; reverse to get ascending-by-price on the wire.
	for i, l := range bidLevels {
		view.Bids[len(bidLevels)-1-i] = levelToView(l)
	}
	// asks.depth is already ascending by price (best-to-worst == lowest
	// price first for the ask side).
	for i, l := range askLevels {
		view.Asks[i] = levelToView(l)
	}
	return view
}
