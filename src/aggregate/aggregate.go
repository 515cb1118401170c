// Package aggregate reduces the replies of a get-max or get-min flood.
package aggregate

import (
	"math"

	"github.com/mosaicnetworks/meshkv/src/proto"
	"github.com/mosaicnetworks/meshkv/src/record"
)

// Comparator orders record values for one aggregate.
type Comparator struct {
	// Seed is the bound a root node starts from.
	Seed   int
	better func(a, b int) bool
}

// Max selects the largest value.
var Max = Comparator{
	Seed:   math.MinInt,
	better: func(a, b int) bool { return a > b },
}

// Min selects the smallest value.
var Min = Comparator{
	Seed:   math.MaxInt,
	better: func(a, b int) bool { return a < b },
}

// For returns the comparator of an aggregate operation.
func For(op proto.Operation) (Comparator, bool) {
	switch op {
	case proto.GetMax:
		return Max, true
	case proto.GetMin:
		return Min, true
	default:
		return Comparator{}, false
	}
}

// Better reports whether a strictly beats b.
func (c Comparator) Better(a, b int) bool {
	return c.better(a, b)
}

// Best returns the better of a and b, preferring a on ties.
func (c Comparator) Best(a, b int) int {
	if c.Better(b, a) {
		return b
	}
	return a
}

// ReduceExtremum picks the winning record among the local record and the
// replies of the neighbours. Error replies and replies that do not parse as a
// record are ignored. A reply only wins if it strictly beats every record
// considered before it, so ties resolve to the local record and then to the
// earliest reply. It returns false when nothing beats the seed bound.
func ReduceExtremum(c Comparator, seed int, local record.Record, replies []string) (record.Record, bool) {
	best, ok := local, c.Better(local.Value, seed)
	bound := c.Best(seed, local.Value)

	for _, r := range replies {
		if r == "" || proto.IsErrorReply(r) {
			continue
		}

		rec, err := record.Parse(r)
		if err != nil {
			continue
		}

		if c.Better(rec.Value, bound) {
			best, ok = rec, true
			bound = rec.Value
		}
	}

	return best, ok
}
