package batching

import "github.com/shopspring/decimal"

// Width is a physical width measured in deckle units.
type Width = decimal.Decimal

// Quantity is a reel count. Fractional values are accepted as they arrive
// from spreadsheets but are never produced by the allocator itself.
type Quantity = decimal.Decimal

// Order is a single production order as read from an order sheet.
// OrderID, Party, ItemName, BF, GSM and DeliveryDate are carried through
// untouched; only Deckle, ReelQty and StockReal drive allocation.
type Order struct {
	OrderID      string   `json:"orderId"`
	Party        string   `json:"party"`
	ItemName     string   `json:"itemName"`
	BF           string   `json:"bf"`
	GSM          string   `json:"gsm"`
	Deckle       Width    `json:"deckle"`
	ReelQty      Quantity `json:"reelQty"`
	StockReal    Quantity `json:"stockReal"`
	DeliveryDate string   `json:"deliveryDate"`
}

// ReelsNeeded returns the quantity still to be produced once stock is
// subtracted, clamped at zero.
func (o Order) ReelsNeeded() Quantity {
	need := o.ReelQty.Sub(o.StockReal)
	if need.IsNegative() {
		return decimal.Zero
	}
	return need
}

// BatchedOrder is an order accepted into a batch together with the
// outstanding quantity computed at allocation time.
type BatchedOrder struct {
	Order
	ReelsNeeded Quantity `json:"reelsNeeded"`
}

// Batch is a run of orders whose combined deckle fits the capacity.
// Waste is capacity minus UsedWidth and is negative only when a single
// order is wider than the capacity.
type Batch struct {
	Orders     []BatchedOrder `json:"orders"`
	UsedWidth  Width          `json:"usedWidth"`
	Waste      Width          `json:"waste"`
	TotalReels Quantity       `json:"totalReels"`
}

// Allocator describes the behaviour required from a batch allocator.
type Allocator interface {
	Allocate(orders []Order, capacity Width) []Batch
}
