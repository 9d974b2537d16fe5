package batching

import (
	"slices"

	"github.com/shopspring/decimal"
)

type greedyAllocator struct{}

// New creates an Allocator that fills batches largest deckle first in a
// single pass.
func New() Allocator {
	return greedyAllocator{}
}

// Allocate partitions orders into batches of at most capacity width.
//
// Orders with nothing left to produce are dropped. The rest are sorted by
// deckle, widest first; equal deckles keep their input order. Each order
// joins the open batch when it fits and otherwise closes it and opens a new
// one, so an order wider than capacity ends up alone in a batch with
// negative waste. The input slice is not modified.
func (greedyAllocator) Allocate(orders []Order, capacity Width) []Batch {
	pending := make([]BatchedOrder, 0, len(orders))
	for _, o := range orders {
		need := o.ReelsNeeded()
		if !need.IsPositive() {
			continue
		}
		pending = append(pending, BatchedOrder{Order: o, ReelsNeeded: need})
	}

	slices.SortStableFunc(pending, func(a, b BatchedOrder) int {
		return b.Deckle.Cmp(a.Deckle)
	})

	batches := make([]Batch, 0)
	var open accumulator
	for _, item := range pending {
		if !open.empty() && open.used.Add(item.Deckle).GreaterThan(capacity) {
			batches = append(batches, open.close(capacity))
			open = accumulator{}
		}
		open.add(item)
	}
	if !open.empty() {
		batches = append(batches, open.close(capacity))
	}

	return batches
}

type accumulator struct {
	orders []BatchedOrder
	used   Width
	reels  Quantity
}

func (a *accumulator) empty() bool {
	return len(a.orders) == 0
}

func (a *accumulator) add(item BatchedOrder) {
	a.orders = append(a.orders, item)
	a.used = a.used.Add(item.Deckle)
	a.reels = a.reels.Add(item.ReelsNeeded)
}

func (a *accumulator) close(capacity Width) Batch {
	return Batch{
		Orders:     a.orders,
		UsedWidth:  a.used,
		Waste:      capacity.Sub(a.used),
		TotalReels: a.reels,
	}
}

// Allocate runs the default allocator. It is a convenience for callers
// that do not need to swap implementations.
func Allocate(orders []Order, capacity Width) []Batch {
	return New().Allocate(orders, capacity)
}

// Utilisation returns UsedWidth as a percentage of capacity, rounded to two
// places. It returns zero for a non-positive capacity.
func Utilisation(used, capacity Width) decimal.Decimal {
	if !capacity.IsPositive() {
		return decimal.Zero
	}
	return used.Div(capacity).Mul(decimal.NewFromInt(100)).Round(2)
}
