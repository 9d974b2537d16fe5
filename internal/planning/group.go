package planning

import (
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/batching"
)

// GroupKey returns the composite grade key an order is allocated under.
func GroupKey(o batching.Order) string {
	return o.BF + "-" + o.GSM
}

// Bucket holds the orders that share a group key, in input order.
type Bucket struct {
	Key    string
	Orders []batching.Order
}

// Partition splits orders into buckets keyed by GroupKey. Buckets are
// returned in the order their key first appears in the input.
func Partition(orders []batching.Order) []Bucket {
	index := make(map[string]int)
	buckets := make([]Bucket, 0)
	for _, o := range orders {
		key := GroupKey(o)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Key: key})
		}
		buckets[i].Orders = append(buckets[i].Orders, o)
	}
	return buckets
}
