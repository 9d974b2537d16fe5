package render

import (
	"encoding/json"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/batching"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/planning"
)

// OrderDocument is the JSON form of a batched order.
type OrderDocument struct {
	OrderID      string      `json:"orderId"`
	Party        string      `json:"party"`
	ItemName     string      `json:"itemName"`
	BF           string      `json:"bf"`
	GSM          string      `json:"gsm"`
	Deckle       json.Number `json:"deckle"`
	ReelQty      json.Number `json:"reelQty"`
	StockReal    json.Number `json:"stockReal"`
	DeliveryDate string      `json:"deliveryDate"`
	ReelsNeeded  json.Number `json:"reelsNeeded"`
}

// BatchDocument is the JSON form of a batch.
type BatchDocument struct {
	Orders     []OrderDocument `json:"orders"`
	UsedWidth  json.Number     `json:"usedWidth"`
	Waste      json.Number     `json:"waste"`
	TotalReels json.Number     `json:"totalReels"`
}

// SummaryDocument is the JSON form of a group summary.
type SummaryDocument struct {
	BatchCount     int         `json:"batchCount"`
	OrderCount     int         `json:"orderCount"`
	ExcludedOrders int         `json:"excludedOrders"`
	TotalReels     json.Number `json:"totalReels"`
	UsedWidth      json.Number `json:"usedWidth"`
	TotalWaste     json.Number `json:"totalWaste"`
	Utilisation    json.Number `json:"utilisation"`
}

// PlanDocument is the JSON shape of a plan shared by the HTTP API and the
// CLI. Decimals are written as bare JSON numbers without losing precision.
type PlanDocument struct {
	PlanID         string                     `json:"planId"`
	Source         string                     `json:"source"`
	CreatedAt      time.Time                  `json:"createdAt"`
	Capacity       json.Number                `json:"capacity"`
	GroupOrder     []string                   `json:"groupOrder"`
	BatchesByGroup map[string][]BatchDocument `json:"batchesByGroup"`
	Summaries      map[string]SummaryDocument `json:"summaries"`
}

// JSONNumber renders a decimal as a bare JSON number.
func JSONNumber(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// NewPlanDocument maps plan onto its JSON shape.
func NewPlanDocument(plan planning.Plan) PlanDocument {
	doc := PlanDocument{
		PlanID:         plan.ID,
		Source:         plan.Source,
		CreatedAt:      plan.CreatedAt,
		Capacity:       JSONNumber(plan.Capacity),
		GroupOrder:     plan.GroupKeys(),
		BatchesByGroup: make(map[string][]BatchDocument, len(plan.Groups)),
		Summaries:      make(map[string]SummaryDocument, len(plan.Groups)),
	}
	for _, g := range plan.Groups {
		batches := make([]BatchDocument, 0, len(g.Batches))
		for _, b := range g.Batches {
			batches = append(batches, newBatchDocument(b))
		}
		doc.BatchesByGroup[g.Key] = batches
		doc.Summaries[g.Key] = SummaryDocument{
			BatchCount:     g.Summary.BatchCount,
			OrderCount:     g.Summary.OrderCount,
			ExcludedOrders: g.Summary.ExcludedOrders,
			TotalReels:     JSONNumber(g.Summary.TotalReels),
			UsedWidth:      JSONNumber(g.Summary.UsedWidth),
			TotalWaste:     JSONNumber(g.Summary.TotalWaste),
			Utilisation:    JSONNumber(g.Summary.Utilisation),
		}
	}
	return doc
}

// JSON writes plan to w as an indented PlanDocument.
func JSON(w io.Writer, plan planning.Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewPlanDocument(plan))
}

func newBatchDocument(b batching.Batch) BatchDocument {
	orders := make([]OrderDocument, 0, len(b.Orders))
	for _, o := range b.Orders {
		orders = append(orders, OrderDocument{
			OrderID:      o.OrderID,
			Party:        o.Party,
			ItemName:     o.ItemName,
			BF:           o.BF,
			GSM:          o.GSM,
			Deckle:       JSONNumber(o.Deckle),
			ReelQty:      JSONNumber(o.ReelQty),
			StockReal:    JSONNumber(o.StockReal),
			DeliveryDate: o.DeliveryDate,
			ReelsNeeded:  JSONNumber(o.ReelsNeeded),
		})
	}
	return BatchDocument{
		Orders:     orders,
		UsedWidth:  JSONNumber(b.UsedWidth),
		Waste:      JSONNumber(b.Waste),
		TotalReels: JSONNumber(b.TotalReels),
	}
}
