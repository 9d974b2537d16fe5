package planning

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/batching"
)

const defaultCapacity = 3500

// DefaultCapacity returns the usable machine deckle when nothing else is
// configured.
func DefaultCapacity() batching.Width {
	return decimal.NewFromInt(defaultCapacity)
}

// Summary aggregates the batches of one group.
type Summary struct {
	BatchCount     int               `json:"batchCount"`
	OrderCount     int               `json:"orderCount"`
	ExcludedOrders int               `json:"excludedOrders"`
	TotalReels     batching.Quantity `json:"totalReels"`
	UsedWidth      batching.Width    `json:"usedWidth"`
	TotalWaste     batching.Width    `json:"totalWaste"`
	Utilisation    decimal.Decimal   `json:"utilisation"`
}

// Group is the allocation result for a single grade key.
type Group struct {
	Key     string           `json:"key"`
	Batches []batching.Batch `json:"batches"`
	Summary Summary          `json:"summary"`
}

// Plan is the outcome of one planning run over an order sheet.
type Plan struct {
	ID        string         `json:"id"`
	Source    string         `json:"source"`
	CreatedAt time.Time      `json:"createdAt"`
	Capacity  batching.Width `json:"capacity"`
	Groups    []Group        `json:"groups"`
}

// BatchesByGroup returns the batch lists keyed by group key.
func (p Plan) BatchesByGroup() map[string][]batching.Batch {
	out := make(map[string][]batching.Batch, len(p.Groups))
	for _, g := range p.Groups {
		out[g.Key] = g.Batches
	}
	return out
}

// GroupKeys returns group keys in plan order.
func (p Plan) GroupKeys() []string {
	keys := make([]string, 0, len(p.Groups))
	for _, g := range p.Groups {
		keys = append(keys, g.Key)
	}
	return keys
}

// BatchCount returns the number of batches across all groups.
func (p Plan) BatchCount() int {
	n := 0
	for _, g := range p.Groups {
		n += len(g.Batches)
	}
	return n
}

// Summarize computes the group summary for batches allocated from orders.
func Summarize(orders []batching.Order, batches []batching.Batch, capacity batching.Width) Summary {
	s := Summary{
		BatchCount: len(batches),
		TotalReels: decimal.Zero,
		UsedWidth:  decimal.Zero,
		TotalWaste: decimal.Zero,
	}
	for _, b := range batches {
		s.OrderCount += len(b.Orders)
		s.TotalReels = s.TotalReels.Add(b.TotalReels)
		s.UsedWidth = s.UsedWidth.Add(b.UsedWidth)
		s.TotalWaste = s.TotalWaste.Add(b.Waste)
	}
	s.ExcludedOrders = len(orders) - s.OrderCount
	s.Utilisation = batching.Utilisation(s.UsedWidth, capacity.Mul(decimal.NewFromInt(int64(len(batches)))))
	return s
}
